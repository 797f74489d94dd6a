package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Environment: "development"},
			Logger:  LoggerConfig{Level: "info"},
			Storage: StorageConfig{DataPath: "/tmp/mughouse"},
			Blob:    BlobConfig{Driver: "fs"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := valid()
	c.App.Environment = "testing"
	if err := c.Validate(); err == nil {
		t.Error("bad environment accepted")
	}

	c = valid()
	c.Logger.Level = "verbose"
	if err := c.Validate(); err == nil {
		t.Error("bad log level accepted")
	}

	c = valid()
	c.Storage.DataPath = ""
	if err := c.Validate(); err == nil {
		t.Error("empty data path accepted")
	}

	c = valid()
	c.Blob.Driver = "gcs"
	if err := c.Validate(); err == nil {
		t.Error("unknown blob driver accepted")
	}

	c = valid()
	c.Blob.Driver = "s3"
	if err := c.Validate(); err == nil {
		t.Error("s3 driver without bucket accepted")
	}
	c.Blob.Bucket = "mughouse-images"
	if err := c.Validate(); err != nil {
		t.Errorf("s3 driver with bucket rejected: %v", err)
	}
}

func TestGetConfigValuePrecedence(t *testing.T) {
	const key = "MUGHOUSE_TEST_VALUE"
	t.Setenv(key, "from-env")

	if got := getConfigValue("from-flag", key, "default"); got != "from-flag" {
		t.Errorf("flag should win: %q", got)
	}
	if got := getConfigValue("", key, "default"); got != "from-env" {
		t.Errorf("env should win over default: %q", got)
	}
	os.Unsetenv(key)
	if got := getConfigValue("", key, "default"); got != "default" {
		t.Errorf("default fallback: %q", got)
	}
}

func TestGetBoolConfigValue(t *testing.T) {
	const key = "MUGHOUSE_TEST_BOOL"
	for _, v := range []string{"true", "1", "yes", "TRUE"} {
		t.Setenv(key, v)
		if !getBoolConfigValue("", key, false) {
			t.Errorf("%q should parse as true", v)
		}
	}
	t.Setenv(key, "nope")
	if getBoolConfigValue("", key, true) {
		t.Error("non-truthy value should be false")
	}
	os.Unsetenv(key)
	if !getBoolConfigValue("", key, true) {
		t.Error("unset should fall back to default")
	}
}

func TestParseDurationValue(t *testing.T) {
	const key = "MUGHOUSE_TEST_DURATION"
	os.Unsetenv(key)

	d, err := parseDurationValue("", key, "15s")
	if err != nil || d != 15*time.Second {
		t.Errorf("default: (%v, %v)", d, err)
	}

	t.Setenv(key, "2m")
	d, err = parseDurationValue("", key, "15s")
	if err != nil || d != 2*time.Minute {
		t.Errorf("env: (%v, %v)", d, err)
	}

	t.Setenv(key, "not-a-duration")
	if _, err := parseDurationValue("", key, "15s"); err == nil {
		t.Error("garbage duration accepted")
	}
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	if err != nil || got != "/default/path" {
		t.Errorf("empty path: (%q, %v)", got, err)
	}

	got, err = expandPath("~/data", "")
	if err != nil {
		t.Fatalf("tilde expansion: %v", err)
	}
	if strings.HasPrefix(got, "~") || !filepath.IsAbs(got) {
		t.Errorf("tilde not expanded: %q", got)
	}

	got, err = expandPath("relative/dir", "")
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("relative path not made absolute: (%q, %v)", got, err)
	}
}

func TestDerivedPaths(t *testing.T) {
	c := &Config{Storage: StorageConfig{DataPath: "/srv/mughouse"}}
	if got := c.DatabasePath(); got != filepath.Join("/srv/mughouse", "mughouse.db") {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := c.SearchIndexPath(); got != filepath.Join("/srv/mughouse", "search.bleve") {
		t.Errorf("SearchIndexPath = %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nMUGHOUSE_ENVFILE_A=hello\nMUGHOUSE_ENVFILE_B=\"quoted\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("MUGHOUSE_ENVFILE_A")
		os.Unsetenv("MUGHOUSE_ENVFILE_B")
	})

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if os.Getenv("MUGHOUSE_ENVFILE_A") != "hello" {
		t.Errorf("A = %q", os.Getenv("MUGHOUSE_ENVFILE_A"))
	}
	if os.Getenv("MUGHOUSE_ENVFILE_B") != "quoted" {
		t.Errorf("quotes not stripped: %q", os.Getenv("MUGHOUSE_ENVFILE_B"))
	}

	// Pre-set env vars win over the file.
	t.Setenv("MUGHOUSE_ENVFILE_A", "preset")
	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if os.Getenv("MUGHOUSE_ENVFILE_A") != "preset" {
		t.Error("env file overwrote a real env var")
	}
}
