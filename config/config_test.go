package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkwok/lifecore/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lifecore.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "language: en\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
	if cfg.DataDir != "content" || cfg.ListenAddr != ":8764" || cfg.SaveDB != "saves.db" {
		t.Errorf("unset fields should keep defaults, got %+v", cfg)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"data_dir: /srv/packs/city",
		"language: zh",
		"listen_addr: 127.0.0.1:9000",
		"save_db: /var/lib/lifecore/saves.db",
	}, "\n"))
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/srv/packs/city" || cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "language: [unclosed\n"},
		{"bad language", "language: fr\n"},
		{"empty data dir", "data_dir: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLang(t *testing.T) {
	if (&Config{Language: "en"}).Lang() != types.LangEN {
		t.Error("en should map to LangEN")
	}
	if (&Config{Language: "zh"}).Lang() != types.LangZH {
		t.Error("zh should map to LangZH")
	}
}
