package environment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ProfileFromFile(t *testing.T) {
	dir := t.TempDir()
	profiles := writeFile(t, dir, "emscfg", `
[default]
host = http://default.example:8000/

[plant]
host = https://plant.example/api/
language = zh_CN
`)
	cfg := writeFile(t, dir, "settings.yaml", `
api_base_url: http://ignored.example
profiles_path: `+profiles+`
session:
  db_path: `+filepath.Join(dir, "db", "session.db")+`
`)

	env, err := Load(context.Background(), Options{ConfigPath: cfg, Profile: "plant"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })

	assert.Equal(t, "https://plant.example/api", env.Profile.Host)
	assert.Equal(t, domain.ProfileSourceFile, env.Profile.Source)
	assert.Equal(t, "zh_CN", env.Translator.Language())
	assert.Equal(t, "小计", env.Translator.T("Subtotal"))
	assert.Len(t, env.Reports.List(), 5)
	assert.FileExists(t, filepath.Join(dir, "db", "session.db"))

	_, err = env.NewGuard().Check(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	manager := env.NewManager()
	defer manager.Close()
	assert.Len(t, manager.Definitions(), 5)
}

func TestLoad_StaticProfile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfg := writeFile(t, dir, "settings.yaml", `
api_base_url: http://backend.example:8000/
language: en
session:
  db_path: ":memory:"
`)

	env, err := Load(context.Background(), Options{ConfigPath: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })

	assert.Equal(t, "http://backend.example:8000", env.Profile.Host)
	assert.Equal(t, domain.ProfileSourceDefault, env.Profile.Source)
	assert.Equal(t, "en", env.Translator.Language())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	t.Run("unknown profile", func(t *testing.T) {
		profiles := writeFile(t, dir, "emscfg", "[default]\nhost = http://default.example\n")
		cfg := writeFile(t, dir, "unknown.yaml", "profiles_path: "+profiles+"\nsession:\n  db_path: \":memory:\"\n")

		_, err := Load(context.Background(), Options{ConfigPath: cfg, Profile: "missing"})
		assert.ErrorContains(t, err, "profile missing not found")
	})

	t.Run("missing profiles file", func(t *testing.T) {
		cfg := writeFile(t, dir, "nofile.yaml", "profiles_path: "+filepath.Join(dir, "nope")+"\n")

		_, err := Load(context.Background(), Options{ConfigPath: cfg})
		assert.ErrorContains(t, err, "failed to read profiles")
	})

	t.Run("missing settings file", func(t *testing.T) {
		_, err := Load(context.Background(), Options{ConfigPath: filepath.Join(dir, "absent.yaml")})
		assert.Error(t, err)
	})
}
