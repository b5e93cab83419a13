package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFileName = "config.yml"
	defaultConfigDirName  = ".config/mtasks"
	defaultDataDirName    = ".local/share/mtasks"
	defaultTasksDirName   = "tasks"
)

// Storage backends
const (
	BackendFilesystem = "filesystem"
	BackendMemory     = "memory"
	BackendSQLite     = "sqlite"
	BackendRedis      = "redis"
	BackendDaemon     = "daemon"
)

// Config holds application configuration
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Daemon      DaemonConfig      `yaml:"daemon"`
	Identity    IdentityConfig    `yaml:"identity"`
	Mail        MailConfig        `yaml:"mail"`
	Logging     LoggingConfig     `yaml:"logging"`
	TUI         TUIConfig         `yaml:"tui"`
	Keybindings KeybindingsConfig `yaml:"keybindings"`
}

// StorageConfig selects and configures the task backing store
type StorageConfig struct {
	Backend    string      `yaml:"backend"`
	DataPath   string      `yaml:"data_path"`
	TasksPath  string      `yaml:"tasks_path"`
	SQLitePath string      `yaml:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// DaemonConfig holds daemon-related configuration
type DaemonConfig struct {
	SocketDir  string `yaml:"socket_dir"`
	SocketName string `yaml:"socket_name"`
	// Backend is the store the daemon itself serves
	Backend string `yaml:"backend"`
}

// IdentityConfig holds local account and session settings
type IdentityConfig struct {
	AccountsPath string `yaml:"accounts_path"`
	SessionPath  string `yaml:"session_path"`
	TokenSecret  string `yaml:"token_secret"`
	SessionTTL   string `yaml:"session_ttl"`
	ResetTTL     string `yaml:"reset_ttl"`
	SessionCheck string `yaml:"session_check"`
}

// MailConfig holds SMTP settings for password reset mail. An empty host
// means mail is written to the log instead.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TUIConfig holds TUI appearance configuration
type TUIConfig struct {
	Theme  string       `yaml:"theme"` // light, dark or system
	Styles StylesConfig `yaml:"styles"`
}

// StylesConfig holds color configuration
type StylesConfig struct {
	Title     TextStyle      `yaml:"title"`
	Task      TextStyle      `yaml:"task"`
	Selected  TextStyle      `yaml:"selected"`
	Completed TextStyle      `yaml:"completed"`
	Overdue   TextStyle      `yaml:"overdue"`
	Help      TextStyle      `yaml:"help"`
	Stats     TextStyle      `yaml:"stats"`
	Priority  PriorityColors `yaml:"priority"`
}

// TextStyle represents text styling
type TextStyle struct {
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Strike     bool   `yaml:"strike,omitempty"`
}

// PriorityColors holds colors for different priority levels
type PriorityColors struct {
	High    string `yaml:"high"`
	Medium  string `yaml:"medium"`
	Low     string `yaml:"low"`
	Default string `yaml:"default"`
}

// KeybindingsConfig holds keybinding configuration
type KeybindingsConfig struct {
	Up               []string `yaml:"up"`
	Down             []string `yaml:"down"`
	Toggle           []string `yaml:"toggle"`
	Delete           []string `yaml:"delete"`
	Search           []string `yaml:"search"`
	FilterCategory   []string `yaml:"filter_category"`
	FilterPriority   []string `yaml:"filter_priority"`
	FilterCompletion []string `yaml:"filter_completion"`
	Quit             []string `yaml:"quit"`
}

// SessionDuration parses IdentityConfig.SessionTTL
func (c IdentityConfig) SessionDuration() time.Duration {
	return parseDuration(c.SessionTTL, 30*24*time.Hour)
}

// ResetDuration parses IdentityConfig.ResetTTL
func (c IdentityConfig) ResetDuration() time.Duration {
	return parseDuration(c.ResetTTL, time.Hour)
}

// SessionCheckInterval parses IdentityConfig.SessionCheck
func (c IdentityConfig) SessionCheckInterval() time.Duration {
	return parseDuration(c.SessionCheck, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Loader handles loading and saving configuration
type Loader struct {
	configPath string
	homeDir    string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a config loader for ~/.config/mtasks/config.yml
func NewLoader() (*Loader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &Loader{
		configPath: filepath.Join(homeDir, defaultConfigDirName, defaultConfigFileName),
		homeDir:    homeDir,
		lookupEnv:  os.LookupEnv,
	}, nil
}

// NewLoaderFrom creates a config loader for an explicit config file
func NewLoaderFrom(configPath string) (*Loader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &Loader{
		configPath: configPath,
		homeDir:    homeDir,
		lookupEnv:  os.LookupEnv,
	}, nil
}

// Load loads the configuration, creating defaults if it doesn't exist.
// Variables from a .env file in the working directory and MTASKS_*
// environment variables override the file.
func (l *Loader) Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := l.loadFile()
	if err != nil {
		return nil, err
	}

	l.applyEnv(cfg)
	return cfg, nil
}

func (l *Loader) loadFile() (*Config, error) {
	if _, err := os.Stat(l.configPath); os.IsNotExist(err) {
		return l.createDefaultConfig()
	}

	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// start from defaults so keys missing from an older file keep a value
	config := l.defaultConfig()
	config.Identity.TokenSecret = ""
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Identity.TokenSecret == "" {
		secret, err := newSecret()
		if err != nil {
			return nil, err
		}
		config.Identity.TokenSecret = secret
		if err := l.Save(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Save persists the configuration to disk
func (l *Loader) Save(config *Config) error {
	configDir := filepath.Dir(l.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// the file carries the token secret
	if err := os.WriteFile(l.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset overwrites the config file with defaults
func (l *Loader) Reset() (*Config, error) {
	if err := os.Remove(l.configPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove config file: %w", err)
	}
	return l.createDefaultConfig()
}

// createDefaultConfig creates and saves a default configuration
func (l *Loader) createDefaultConfig() (*Config, error) {
	config := l.defaultConfig()

	if err := l.Save(config); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.Storage.TasksPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tasks directory: %w", err)
	}

	return config, nil
}

func (l *Loader) defaultConfig() *Config {
	dataDir := filepath.Join(l.homeDir, defaultDataDirName)
	secret, err := newSecret()
	if err != nil {
		secret = ""
	}

	return &Config{
		Storage: StorageConfig{
			Backend:    BackendFilesystem,
			DataPath:   dataDir,
			TasksPath:  filepath.Join(dataDir, defaultTasksDirName),
			SQLitePath: filepath.Join(dataDir, "tasks.db"),
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Daemon: DaemonConfig{
			SocketDir:  dataDir,
			SocketName: "mtasksd.sock",
			Backend:    BackendFilesystem,
		},
		Identity: IdentityConfig{
			AccountsPath: filepath.Join(dataDir, "accounts.yml"),
			SessionPath:  filepath.Join(dataDir, "session"),
			TokenSecret:  secret,
			SessionTTL:   "720h",
			ResetTTL:     "1h",
			SessionCheck: "5s",
		},
		Mail: MailConfig{
			Port: 587,
			From: "mtasks <no-reply@localhost>",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		TUI: TUIConfig{
			Theme: "system",
			Styles: StylesConfig{
				Title:     TextStyle{Foreground: "99", Bold: true},
				Task:      TextStyle{},
				Selected:  TextStyle{Foreground: "230", Background: "62", Bold: true},
				Completed: TextStyle{Foreground: "241", Strike: true},
				Overdue:   TextStyle{Foreground: "#FF3B30", Bold: true},
				Help:      TextStyle{Foreground: "241"},
				Stats:     TextStyle{},
				Priority: PriorityColors{
					High:    "#FF3B30",
					Medium:  "#FF9500",
					Low:     "#34C759",
					Default: "#8E8E93",
				},
			},
		},
		Keybindings: KeybindingsConfig{
			Up:               []string{"up", "k"},
			Down:             []string{"down", "j"},
			Toggle:           []string{" ", "x"},
			Delete:           []string{"d"},
			Search:           []string{"/"},
			FilterCategory:   []string{"c"},
			FilterPriority:   []string{"p"},
			FilterCompletion: []string{"f"},
			Quit:             []string{"q", "ctrl+c"},
		},
	}
}

// applyEnv overrides settings from MTASKS_* variables
func (l *Loader) applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			var n int
			if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
				*dst = n
			}
		}
	}

	str("MTASKS_STORAGE_BACKEND", &cfg.Storage.Backend)
	str("MTASKS_TASKS_PATH", &cfg.Storage.TasksPath)
	str("MTASKS_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("MTASKS_REDIS_ADDR", &cfg.Storage.Redis.Address)
	str("MTASKS_REDIS_USERNAME", &cfg.Storage.Redis.Username)
	str("MTASKS_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	num("MTASKS_REDIS_DB", &cfg.Storage.Redis.DB)
	str("MTASKS_SOCKET_DIR", &cfg.Daemon.SocketDir)
	str("MTASKS_DAEMON_BACKEND", &cfg.Daemon.Backend)
	str("MTASKS_TOKEN_SECRET", &cfg.Identity.TokenSecret)
	str("MTASKS_SMTP_HOST", &cfg.Mail.Host)
	num("MTASKS_SMTP_PORT", &cfg.Mail.Port)
	str("MTASKS_SMTP_USERNAME", &cfg.Mail.Username)
	str("MTASKS_SMTP_PASSWORD", &cfg.Mail.Password)
	str("MTASKS_SMTP_FROM", &cfg.Mail.From)
	str("MTASKS_LOG_LEVEL", &cfg.Logging.Level)
	str("MTASKS_THEME", &cfg.TUI.Theme)
}

// GetConfigPath returns the path to the config file
func (l *Loader) GetConfigPath() string {
	return l.configPath
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
