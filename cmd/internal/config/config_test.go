package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Listen)
	assert.Equal(t, "local", cfg.Auth.Provider)
	assert.Equal(t, "remote", cfg.Client.Backend)
	assert.Equal(t, 30*time.Second, cfg.Booking.Refresh)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, 660, rules.OpenMinute)
	assert.Equal(t, 1080, rules.CloseMinute)
	assert.Equal(t, 30, rules.WindowDays)
	assert.Equal(t, 20, rules.CutoffHour)
	assert.Equal(t, 60, rules.DefaultDurationMinutes)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nailbook.yaml")
	yml := `
listen: ":7070"
database:
  path: /tmp/salon.db
booking:
  timezone: Europe/Dublin
  open: "10:30"
  close: "17:00"
  refresh: 1m
auth:
  provider: local
  jwt_secret: from-file
client:
  backend: local
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "/tmp/salon.db", cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "local", cfg.Client.Backend)
	assert.Equal(t, time.Minute, cfg.Booking.Refresh)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Dublin", rules.Location.String())
	assert.Equal(t, 10*60+30, rules.OpenMinute)
	assert.Equal(t, 17*60, rules.CloseMinute)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad provider": "auth:\n  provider: ldap\n",
		"bad backend":  "client:\n  backend: carrier-pigeon\n",
		"bad timezone": "booking:\n  timezone: Mars/Olympus\n",
		"bad hours":    "booking:\n  open: \"19:00\"\n  close: \"18:00\"\n",
		"bad yaml":     "listen: [\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
