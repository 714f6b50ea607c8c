package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/storage"
)

// Config is the contents of config.toml.
type Config struct {
	Workspace string        `toml:"workspace"`
	Storage   StorageConfig `toml:"storage"`
	Server    ServerConfig  `toml:"server"`
	Display   DisplayConfig `toml:"display"`
}

// StorageConfig selects where funnels are saved.
type StorageConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DisplayConfig only affects terminal output.
type DisplayConfig struct {
	// MaxIssues truncates the issue panel; 0 shows everything.
	MaxIssues int `toml:"max_issues"`
}

func defaultConfig() Config {
	return Config{
		Workspace: "default",
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "funnelkit",
				Collection: "slots",
			},
		},
		Server:  ServerConfig{Addr: ":8080"},
		Display: DisplayConfig{MaxIssues: 5},
	}
}

// loadConfig reads path on top of the defaults. A missing file is only an
// error when the user asked for it explicitly.
func loadConfig(path string, explicit bool, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warnf("Ignoring unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendMemory, storage.BackendNull,
		storage.BackendRedis, storage.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown storage backend %q (want file, memory, null, redis or mongo)", c.Storage.Backend)
	}
	if c.Display.MaxIssues < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "display.max_issues cannot be negative")
	}
	return errors.ValidateWorkspace(c.Workspace)
}

// storageConfig resolves the storage section, filling the data directory.
func (c Config) storageConfig() (storage.Config, error) {
	dir := c.Storage.Dir
	if dir == "" && c.Storage.Backend == storage.BackendFile {
		d, err := dataDir()
		if err != nil {
			return storage.Config{}, fmt.Errorf("get data dir: %w", err)
		}
		dir = d
	}
	return storage.Config{
		Backend: c.Storage.Backend,
		Dir:     expandHome(dir),
		Redis: storage.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   appName + ":",
		},
		Mongo: storage.MongoOptions{
			URI:        c.Storage.Mongo.URI,
			Database:   c.Storage.Mongo.Database,
			Collection: c.Storage.Mongo.Collection,
		},
	}, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns the default config file (~/.config/funnelkit/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// dataDir returns the storage directory using XDG standard (~/.local/share/funnelkit/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
