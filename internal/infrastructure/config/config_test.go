package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func newTestLoader(t *testing.T, env map[string]string) *Loader {
	t.Helper()
	home := t.TempDir()
	return &Loader{
		configPath: filepath.Join(home, defaultConfigDirName, defaultConfigFileName),
		homeDir:    home,
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
}

func TestLoader_CreatesDefaults(t *testing.T) {
	is := is.New(t)
	l := newTestLoader(t, nil)

	cfg, err := l.Load()
	is.NoErr(err)
	is.Equal(cfg.Storage.Backend, BackendFilesystem)
	is.True(cfg.Identity.TokenSecret != "")
	is.Equal(cfg.TUI.Styles.Priority.High, "#FF3B30")

	_, err = os.Stat(l.GetConfigPath())
	is.NoErr(err)
	_, err = os.Stat(cfg.Storage.TasksPath)
	is.NoErr(err)

	again, err := l.Load()
	is.NoErr(err)
	is.Equal(again.Identity.TokenSecret, cfg.Identity.TokenSecret)
}

func TestLoader_EnvOverrides(t *testing.T) {
	is := is.New(t)
	l := newTestLoader(t, map[string]string{
		"MTASKS_STORAGE_BACKEND": "sqlite",
		"MTASKS_SMTP_PORT":       "2525",
		"MTASKS_LOG_LEVEL":       "debug",
	})

	cfg, err := l.Load()
	is.NoErr(err)
	is.Equal(cfg.Storage.Backend, BackendSQLite)
	is.Equal(cfg.Mail.Port, 2525)
	is.Equal(cfg.Logging.Level, "debug")

	// overrides are not written back
	data, err := os.ReadFile(l.GetConfigPath())
	is.NoErr(err)
	is.True(!strings.Contains(string(data), "backend: sqlite"))
}

func TestLoader_PartialFileKeepsDefaults(t *testing.T) {
	is := is.New(t)
	l := newTestLoader(t, nil)
	is.NoErr(os.MkdirAll(filepath.Dir(l.GetConfigPath()), 0755))
	is.NoErr(os.WriteFile(l.GetConfigPath(), []byte("storage:\n  backend: memory\n"), 0600))

	cfg, err := l.Load()
	is.NoErr(err)
	is.Equal(cfg.Storage.Backend, BackendMemory)
	is.Equal(cfg.Daemon.SocketName, "mtasksd.sock")
	is.True(cfg.Identity.TokenSecret != "") // generated and saved
}

func TestIdentityConfig_Durations(t *testing.T) {
	is := is.New(t)
	is.Equal(IdentityConfig{SessionTTL: "2h"}.SessionDuration(), 2*time.Hour)
	is.Equal(IdentityConfig{SessionTTL: "bogus"}.SessionDuration(), 30*24*time.Hour)
	is.Equal(IdentityConfig{}.ResetDuration(), time.Hour)
	is.Equal(IdentityConfig{}.SessionCheckInterval(), 5*time.Second)
	is.Equal(IdentityConfig{SessionCheck: "250ms"}.SessionCheckInterval(), 250*time.Millisecond)
}
