package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  data_dir: runs
reader:
  squeeze: false
  missing_value: 1e31
charts:
  cmap: blues
reservoir:
  clim: 0.1
  nlim: 0.5
  flow_max: 800
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Server.Addr != ":9000" {
		t.Errorf("Expected addr :9000, got %q", c.Server.Addr)
	}
	if want := filepath.Join(filepath.Dir(path), "runs"); c.Server.DataDir != want {
		t.Errorf("Expected data dir %q, got %q", want, c.Server.DataDir)
	}
	if c.Charts.LineWidth != 1 {
		t.Errorf("Expected default line width 1, got %v", c.Charts.LineWidth)
	}

	opts := c.ReaderOptions()
	if opts.Squeeze {
		t.Error("Expected squeeze disabled")
	}
	if opts.MissingValue == nil || *opts.MissingValue != 1e31 {
		t.Errorf("Expected missing value 1e31, got %v", opts.MissingValue)
	}

	ro := c.ReservoirOptions()
	if ro.Conservative == nil || *ro.Conservative != 0.1 {
		t.Errorf("Expected clim 0.1, got %v", ro.Conservative)
	}
	if ro.Flood != nil {
		t.Errorf("Expected flim unset, got %v", *ro.Flood)
	}
	if ro.FlowMax != 800 {
		t.Errorf("Expected flow max 800, got %v", ro.FlowMax)
	}
}

func TestDefaultReaderSqueezes(t *testing.T) {
	if !Default().ReaderOptions().Squeeze {
		t.Error("Expected default reader to squeeze")
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"limit out of range", "reservoir:\n  flim: 1.5\n", "reservoir.flim"},
		{"unknown cmap", "charts:\n  cmap: jet\n", "charts.cmap"},
		{"negative size", "charts:\n  width: -1\n", "charts size"},
		{"empty addr", "server:\n  addr: \"\"\n", "server.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := LoadUnchecked(writeConfig(t, "server: [")); err == nil {
		t.Error("Expected YAML error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("API_PORT", "9100")
	t.Setenv("DATA_DIR", "/srv/lisflood")
	t.Setenv("API_ENV", "production")
	c := Default()
	c.ApplyEnv()
	if c.Server.Addr != ":9100" || c.Server.DataDir != "/srv/lisflood" || c.Server.Env != "production" {
		t.Errorf("Unexpected server config %+v", c.Server)
	}
}
