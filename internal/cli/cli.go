package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "funnelkit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ExitError ends the process with Code after the command has already
// reported the problem to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// errSilent fails a command without printing anything further.
var errSilent = &ExitError{Code: 1}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string // --config
	workspace  string // --workspace
	cfg        *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process, applying --workspace.
func (c *CLI) config() (Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path, explicit, c.Logger)
	if err != nil {
		return Config{}, err
	}
	if c.workspace != "" {
		cfg.Workspace = c.workspace
		if err := cfg.validate(); err != nil {
			return Config{}, err
		}
	}
	c.Logger.Debugf("Using workspace %q with %s storage", cfg.Workspace, cfg.Storage.Backend)
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Session Factory
// =============================================================================

// openStore opens the configured storage backend. Network backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context, cfg Config) (storage.Store, error) {
	sc, err := cfg.storageConfig()
	if err != nil {
		return nil, err
	}
	remote := sc.Backend == storage.BackendRedis || sc.Backend == storage.BackendMongo
	if !remote {
		return storage.Open(ctx, sc)
	}

	spinner := newSpinner(ctx, "Connecting to "+sc.Backend+"...")
	spinner.Start()
	st, err := storage.Open(ctx, sc)
	if err != nil {
		spinner.StopWithError("Could not connect to " + sc.Backend)
		return nil, err
	}
	spinner.Stop()
	return st, nil
}

// openSession opens the configured workspace. The caller must Close it.
func (c *CLI) openSession(ctx context.Context) (*editor.Session, Config, error) {
	return c.openSessionWith(ctx, c.Logger)
}

// openSessionWith is openSession with a different session logger.
func (c *CLI) openSessionWith(ctx context.Context, logger *log.Logger) (*editor.Session, Config, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, Config{}, err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, Config{}, err
	}
	s, err := editor.Open(ctx, st, editor.Options{Workspace: cfg.Workspace, Logger: logger})
	if err != nil {
		st.Close()
		return nil, Config{}, err
	}
	return s, cfg, nil
}
