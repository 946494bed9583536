package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/leeforge/squash/env_mode"
	"github.com/spf13/viper"
)

func DefaultConfigOptions() ConfigOptions {
	basePath := os.Getenv("SQUASH_CONFIG_PATH")
	if basePath == "" {
		basePath = "config"
	}

	return ConfigOptions{
		BasePath:  basePath,
		FileName:  "squash",
		FileType:  "yaml",
		EnvPrefix: "SQUASH",
	}
}

// NewConfig reads every layered config file that exists under opts.BasePath.
// Finding no file is not an error: struct defaults and the environment apply.
func NewConfig(optsArr ...ConfigOptions) (*Config, error) {
	opts := DefaultConfigOptions()
	if len(optsArr) > 0 {
		opts = optsArr[0]
	}

	c := &Config{opts: opts}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) reload() error {
	files := getConfigFilePaths(c.opts)
	instance, err := createViper(c.opts, files)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.instance = instance
	c.files = files
	c.mu.Unlock()
	return nil
}

// Files returns the config files that were merged, in load order.
func (c *Config) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.files...)
}

func (c *Config) Bind(instance any) error {
	if c == nil || c.instance == nil {
		return fmt.Errorf("config instance is nil")
	}
	if instance == nil {
		return fmt.Errorf("target instance is nil")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.instance.Unmarshal(instance); err != nil {
		return fmt.Errorf("unmarshal config (path: %s, file: %s.%s): %w",
			c.opts.BasePath, c.opts.FileName, c.opts.FileType, err)
	}
	return nil
}

// BindWithDefaults applies `default` struct tags and then overlays the
// loaded values. Defaults are applied first only, so explicit false/zero
// values from files survive.
func (c *Config) BindWithDefaults(instance any) error {
	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("set defaults: %w", err)
	}
	return c.Bind(instance)
}

// Watch reloads the configuration whenever a file in BasePath changes and
// calls opts.OnChange afterwards. It returns when ctx is done.
func (c *Config) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(c.opts.BasePath); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", c.opts.BasePath, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !c.isConfigFile(e.Name) || e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := c.reload(); err != nil {
					continue
				}
				if c.opts.OnChange != nil {
					c.opts.OnChange(e)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (c *Config) isConfigFile(path string) bool {
	name := filepath.Base(path)
	for _, candidate := range configFileNames(c.opts) {
		if name == candidate {
			return true
		}
	}
	return false
}

func createViper(opts ConfigOptions, files []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(opts.FileType)

	for _, configPath := range files {
		tempV := viper.New()
		tempV.SetConfigFile(configPath)
		if err := tempV.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		if err := v.MergeConfigMap(tempV.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge config file %s: %w", configPath, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	for _, key := range opts.Keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	return v, nil
}

// configFileNames lists candidate file names in merge order: base, local,
// then the current environment mode's variants.
func configFileNames(opts ConfigOptions) []string {
	base := []string{opts.FileName, opts.FileName + ".local"}
	for _, suffix := range env_mode.Mode().Suffixes() {
		base = append(base,
			fmt.Sprintf("%s.%s", opts.FileName, suffix),
			fmt.Sprintf("%s.%s.local", opts.FileName, suffix),
		)
	}

	names := make([]string, 0, len(base))
	for _, n := range base {
		names = append(names, n+"."+opts.FileType)
	}
	return names
}

func getConfigFilePaths(opts ConfigOptions) (configFiles []string) {
	for _, name := range configFileNames(opts) {
		file := filepath.Join(opts.BasePath, name)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			configFiles = append(configFiles, file)
		}
	}
	return configFiles
}
