package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inspectlog.yml")
	yml := "port: \"8081\"\nbase_url: https://inspect.example.org\nqr_size: 300\ndefault_location: ICU\n"
	if err := os.WriteFile(p, []byte(yml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	SetPath(p)
	t.Cleanup(func() { SetPath("./inspectlog.yml") })

	t.Setenv("INSPECTLOG_BASE_URL", "https://override.example.org")
	t.Setenv("INSPECTLOG_QR_SIZE", "not-a-number")

	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Port != "8081" || c.DefaultLocation != "ICU" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.BaseURL != "https://override.example.org" {
		t.Fatalf("BaseURL = %q, want env override", c.BaseURL)
	}
	if c.QRSize != 300 {
		t.Fatalf("QRSize = %d, want 300 (bad env value ignored)", c.QRSize)
	}
	if c.AdminUsername != "admin" || c.DBPath != "./inspectlog.db" {
		t.Fatalf("defaults not filled: %+v", c)
	}
	if GetConfig() != c {
		t.Fatalf("GetConfig differs from loaded config")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	SetPath(filepath.Join(t.TempDir(), "absent.yml"))
	t.Cleanup(func() { SetPath("./inspectlog.yml") })

	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.QRSize != Defaults().QRSize || c.BaseURL == "" {
		t.Fatalf("config = %+v, want defaults", c)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inspectlog.yml")
	SetPath(p)
	t.Cleanup(func() { SetPath("./inspectlog.yml") })

	c := Defaults()
	c.DefaultLocation = "Ward 5"
	c.QRSize = 0
	if err := SaveConfig(c); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if GetConfig().QRSize != Defaults().QRSize {
		t.Fatalf("SaveConfig did not fill the QR size default")
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.DefaultLocation != "Ward 5" {
		t.Fatalf("DefaultLocation = %q, want Ward 5", loaded.DefaultLocation)
	}
}

func TestSaveConfigKeepsEnvSecretsOffDisk(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inspectlog.yml")
	if err := os.WriteFile(p, []byte("port: \"8081\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	SetPath(p)
	t.Cleanup(func() { SetPath("./inspectlog.yml") })

	t.Setenv("INSPECTLOG_SESSION_SECRET", "env-only-session-secret")
	t.Setenv("INSPECTLOG_ADMIN_PASSWORD", "env-only-password")
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	c := GetConfig()
	c.BaseURL = "https://inspect.example.org"
	if err := SaveConfig(c); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if GetConfig().AdminPassword != "env-only-password" {
		t.Fatalf("current config lost the env password")
	}

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	saved := string(data)
	for _, secret := range []string{"env-only-session-secret", "env-only-password", "session_secret", "admin_password"} {
		if strings.Contains(saved, secret) {
			t.Fatalf("saved file contains %q:\n%s", secret, saved)
		}
	}
	for _, want := range []string{"port: \"8081\"", "base_url: https://inspect.example.org"} {
		if !strings.Contains(saved, want) {
			t.Fatalf("saved file is missing %q:\n%s", want, saved)
		}
	}
}
