package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/leeforge/squash/config"
	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GlobalOptions carries the flags shared by every command and the state
// loaded from them before a command runs.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string

	mu        sync.RWMutex
	app       *config.AppConfig
	conf      *config.Config
	logger    logging.Logger
	listeners []func(*config.AppConfig)
}

func NewRootCommand() *cobra.Command {
	globalOptions := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:           "squash",
		Short:         "Compress images into web-ready renditions",
		Long:          "squash decodes images, fits them into a bounding box and re-encodes them as WebP or JPEG, optionally with 150x150 and 50x50 extra sizes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return globalOptions.load(cmd)
		},
	}

	globalOptions.registerFlags(rootCmd)

	rootCmd.AddCommand(NewCompressCommand(globalOptions))
	rootCmd.AddCommand(NewWatchCommand(globalOptions))

	return rootCmd
}

func (options *GlobalOptions) registerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&options.ConfigPath, "config", "", "Directory holding squash.yaml and its layered variants. (Env: SQUASH_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", "", "Logging level (debug, info, warn, error). (Env: SQUASH_LOGGING_LEVEL)")
}

// load reads the configuration and builds the logger.
func (options *GlobalOptions) load(cmd *cobra.Command) error {
	opts := config.DefaultConfigOptions()
	if options.ConfigPath != "" {
		opts.BasePath = options.ConfigPath
	}
	opts.OnChange = options.configChanged

	app, conf, err := config.Load(opts)
	if err != nil {
		return apperrors.NewConfig("load configuration", err)
	}
	if options.LogLevel != "" {
		app.Logging.Level = options.LogLevel
	}

	logger := logging.NewLoggerTo(app.Logging, zapcore.AddSync(cmd.ErrOrStderr()))
	logging.SetGlobal(logger)
	logger.Debug("configuration loaded", zap.Strings("files", conf.Files()))

	options.mu.Lock()
	options.app, options.conf, options.logger = app, conf, logger
	options.mu.Unlock()
	return nil
}

// App returns the current configuration.
func (options *GlobalOptions) App() *config.AppConfig {
	options.mu.RLock()
	defer options.mu.RUnlock()
	return options.app
}

func (options *GlobalOptions) Logger() logging.Logger {
	options.mu.RLock()
	defer options.mu.RUnlock()
	if options.logger == nil {
		return logging.Global()
	}
	return options.logger
}

// OnConfigChange registers fn to run with the new configuration after the
// config files change on disk.
func (options *GlobalOptions) OnConfigChange(fn func(*config.AppConfig)) {
	options.mu.Lock()
	defer options.mu.Unlock()
	options.listeners = append(options.listeners, fn)
}

func (options *GlobalOptions) configChanged(e fsnotify.Event) {
	options.mu.RLock()
	conf, prev := options.conf, options.app
	options.mu.RUnlock()
	if conf == nil {
		return
	}

	var next config.AppConfig
	if err := conf.BindWithDefaults(&next); err != nil {
		options.Logger().Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))
		return
	}
	if err := next.Validate(); err != nil {
		options.Logger().Warn("config reload rejected", zap.String("file", e.Name), zap.Error(err))
		return
	}
	if options.LogLevel != "" {
		next.Logging.Level = options.LogLevel
	}
	if prev != nil {
		// The logger is built once per run.
		next.Logging = prev.Logging
	}

	options.mu.Lock()
	options.app = &next
	listeners := append([]func(*config.AppConfig){}, options.listeners...)
	options.mu.Unlock()

	options.Logger().Info("configuration reloaded", zap.String("file", e.Name))
	for _, fn := range listeners {
		fn(&next)
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.NewErrorFormatter(false, true).Format(err))
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}
