// Package settings reads the timing information out of a LISFLOOD settings XML file.
package settings

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"lisflood-diag/internal/data"
)

var (
	// ErrKeyNotFound is returned when a required textvar is absent.
	ErrKeyNotFound = errors.New("settings key not found")
	// ErrMalformed is returned when the document cannot be read as settings XML.
	ErrMalformed = errors.New("malformed settings document")
)

// Document holds every <textvar name=".." value=".."/> of a settings file,
// wherever it sits in the tree. The first occurrence of a name wins.
type Document struct {
	names  []string
	values map[string]string
}

// Load reads a settings file from disk (optionally .gz or .zst compressed).
func Load(path string) (*Document, error) {
	rc, err := data.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a settings document from r.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{values: map[string]string{}}
	dec := xml.NewDecoder(r)
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "textvar" {
			continue
		}
		var name, value string
		hasValue := false
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				name = a.Value
			case "value":
				value = a.Value
				hasValue = true
			}
		}
		if name == "" || !hasValue {
			continue
		}
		if _, dup := doc.values[name]; dup {
			continue
		}
		doc.names = append(doc.names, name)
		doc.values[name] = value
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: no elements", ErrMalformed)
	}
	return doc, nil
}

// Names lists the textvar names in document order.
func (d *Document) Names() []string { return d.names }

// Lookup returns the raw value of a textvar.
func (d *Document) Lookup(name string) (string, error) {
	v, ok := d.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	return v, nil
}

var refPattern = regexp.MustCompile(`\$\(([^()]+)\)`)

const maxExpandDepth = 16

// Expand returns the value of a textvar with $(Other) references to other
// textvars substituted.
func (d *Document) Expand(name string) (string, error) {
	return d.expand(name, 0)
}

func (d *Document) expand(name string, depth int) (string, error) {
	if depth > maxExpandDepth {
		return "", fmt.Errorf("%w: reference loop expanding %s", ErrMalformed, name)
	}
	raw, err := d.Lookup(name)
	if err != nil {
		return "", err
	}
	var firstErr error
	out := refPattern.ReplaceAllStringFunc(raw, func(m string) string {
		if firstErr != nil {
			return m
		}
		ref := strings.TrimSpace(refPattern.FindStringSubmatch(m)[1])
		v, err := d.expand(ref, depth+1)
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
