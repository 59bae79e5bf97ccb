package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSONConfigSuccess(t *testing.T) {
	path := writeTempConfig(t, `{"packets":"pkts","output":"out.bin","blocksize":1024,"blockcount":40,"runid":42,"originallen":12345,"decompress":true,"statlog":"stats-%Y.csv","statperiod":5}`)

	var cfg Config
	if err := parseJSONConfig(&cfg, path); err != nil {
		t.Fatalf("parseJSONConfig returned error: %v", err)
	}

	if cfg.Packets != "pkts" || cfg.Output != "out.bin" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.BlockSize != 1024 || cfg.BlockCount != 40 || cfg.RunID != 42 || cfg.OriginalLen != 12345 {
		t.Fatalf("unexpected scalar fields: %+v", cfg)
	}
	if !cfg.Decompress || cfg.StatPeriod != 5 {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
}

func TestParseJSONConfigMissingFile(t *testing.T) {
	var cfg Config
	missing := filepath.Join(t.TempDir(), "missing.json")
	if err := parseJSONConfig(&cfg, missing); err == nil {
		t.Fatalf("parseJSONConfig expected error for missing file")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
