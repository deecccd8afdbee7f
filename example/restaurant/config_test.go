package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_MissingFileIsLocalMode(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	conf, err := loadConfig(filepath.Join(dir, "missing.json"), "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if diff := cmp.Diff(&Config{Lang: "English"}, conf); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EnvFileOverrides(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"model":"gpt-4o-mini","lang":"French","redis_db":2}`)
	env := writeFile(t, dir, ".env", "OPENAI_API_KEY=sk-test\nREDIS_ADDRESS=localhost:6379\n")

	conf, err := loadConfig(path, env)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := &Config{
		APIKey:    "sk-test",
		Model:     "gpt-4o-mini",
		Lang:      "French",
		RedisAddr: "localhost:6379",
		RedisDB:   2,
	}
	if diff := cmp.Diff(want, conf); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	cases := map[string]string{
		"key without model": `{"api_key":"sk-test"}`,
		"bad base url":      `{"base_url":"not a url"}`,
		"redis db range":    `{"redis_db":42}`,
		"broken json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "config.json", body)
			if _, err := loadConfig(path, ""); err == nil {
				t.Fatalf("expected error for %s", body)
			}
		})
	}
}
