package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("WIKIMARK_TEST_NAME", "vault")
	p := writeConfig(t, "name: ${WIKIMARK_TEST_NAME}\ncount: 3\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "vault" || s.Count != 3 {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeConfig(t, "count: -1\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional_KeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Count: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("defaults overwritten: %+v", s)
	}

	p := writeConfig(t, "count: 5\n")
	if err := LoadOptional(p, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "default" || s.Count != 5 {
		t.Errorf("sample = %+v", s)
	}
}
