package data

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const payload = "timeseries scalar\n2\ntimestep\n1\n1 0.5\n"

func TestOpenPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dis.tss")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	assertContent(t, path)
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dis.tss.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	assertContent(t, path)
}

func TestOpenZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dis.tss.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	assertContent(t, path)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.tss"))
	if !os.IsNotExist(err) {
		t.Fatalf("Expected not-exist error, got %v", err)
	}
}

func TestTrimCompression(t *testing.T) {
	cases := map[string]string{
		"a/dis.tss.gz":  "a/dis.tss",
		"a/dis.tss.zst": "a/dis.tss",
		"a/dis.tss":     "a/dis.tss",
	}
	for in, want := range cases {
		if got := TrimCompression(in); got != want {
			t.Errorf("TrimCompression(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertContent(t *testing.T, path string) {
	t.Helper()
	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != payload {
		t.Errorf("Expected %q, got %q", payload, string(got))
	}
}
