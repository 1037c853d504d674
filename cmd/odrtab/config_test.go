package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "a", configFileName)
	if err := os.WriteFile(want, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findConfig(nested)
	if err != nil || !ok {
		t.Fatalf("findConfig = %q, %v, %v", got, ok, err)
	}
	if got != want {
		t.Fatalf("findConfig = %q, want %q", got, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg fileConfig)
	}{
		{
			name:    "empty",
			content: "",
			check: func(t *testing.T, cfg fileConfig) {
				if !cfg.Check.failOnViolations() {
					t.Fatal("fail must default to true")
				}
			},
		},
		{
			name:    "full",
			content: "[table]\nproducer = \"clang 18\"\ncodec = \"lz4\"\n\n[check]\njobs = 4\nfail = false\nformat = \"json\"\n",
			check: func(t *testing.T, cfg fileConfig) {
				if cfg.Table.Producer != "clang 18" || cfg.Table.Codec != "lz4" {
					t.Fatalf("table = %+v", cfg.Table)
				}
				if cfg.Check.Jobs != 4 || cfg.Check.failOnViolations() || cfg.Check.Format != "json" {
					t.Fatalf("check = %+v", cfg.Check)
				}
			},
		},
		{name: "unknown key", content: "[table]\nlevel = 3\n", wantErr: "unknown keys: table.level"},
		{name: "bad codec", content: "[table]\ncodec = \"brotli\"\n", wantErr: "[table].codec"},
		{name: "bad format", content: "[check]\nformat = \"sarif\"\n", wantErr: "[check].format"},
		{name: "negative jobs", content: "[check]\njobs = -1\n", wantErr: "[check].jobs"},
		{name: "syntax", content: "[table\n", wantErr: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), configFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := loadConfigFile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfigFile: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}
