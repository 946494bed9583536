package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leeforge/squash/config"
	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/gallery"
	"github.com/leeforge/squash/logging"
	"github.com/leeforge/squash/media/storage"
	"github.com/leeforge/squash/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type WatchOptions struct {
	Out    string
	Export bool
	Settle time.Duration
}

func NewWatchCommand(globalOptions *GlobalOptions) *cobra.Command {
	watchOptions := &WatchOptions{}

	watchCmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Compress images as they are dropped into a directory",
		Long:  "watch compresses every image written to DIR until interrupted. Changes to the config files apply to files dropped afterwards.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchOptions.run(ctx, cmd, globalOptions, args[0])
		},
	}

	watchOptions.registerFlags(watchCmd)
	return watchCmd
}

func (options *WatchOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&options.Out, "out", "", "Write renditions to this directory.")
	cmd.Flags().BoolVar(&options.Export, "export", false, "Write renditions to the configured storage.")
	cmd.Flags().DurationVar(&options.Settle, "settle", 300*time.Millisecond, "Quiet period after the last write before a file is processed.")
}

func (options *WatchOptions) run(ctx context.Context, cmd *cobra.Command, globalOptions *GlobalOptions, dir string) error {
	app := globalOptions.App()
	logger := globalOptions.Logger().Named("watch")

	d := &dropFolder{
		dir:       dir,
		settle:    options.Settle,
		images:    gallery.NewCollection(),
		collector: metrics.NewCollector(),
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		logger:    logger,
		timers:    make(map[string]*time.Timer),
		names:     storage.NewNames(),
	}
	if options.Out != "" {
		if abs, err := filepath.Abs(options.Out); err == nil {
			d.skip = abs
		}
	}

	build := func(app *config.AppConfig) (*runner, error) {
		r, err := newRunner(app, d.images, d.collector, globalOptions.Logger())
		if err != nil {
			return nil, err
		}
		provider, folder, err := exportProvider(app, options.Out, options.Export)
		if err != nil {
			return nil, err
		}
		if provider != nil {
			r.withExport(provider, folder, d.names)
		}
		return r, nil
	}

	r, err := build(app)
	if err != nil {
		return err
	}
	d.runner.Store(r)

	globalOptions.OnConfigChange(func(next *config.AppConfig) {
		r, err := build(next)
		if err != nil {
			logger.Warn("keeping previous settings", zap.Error(err))
			return
		}
		d.runner.Store(r)
	})
	if err := globalOptions.watchConfig(ctx); err != nil {
		logger.Debug("config files are not watched", zap.Error(err))
	}

	return d.watch(ctx)
}

// watchConfig starts reloading the configuration on file changes.
func (options *GlobalOptions) watchConfig(ctx context.Context) error {
	options.mu.RLock()
	conf := options.conf
	options.mu.RUnlock()
	if conf == nil {
		return fmt.Errorf("configuration not loaded")
	}
	return conf.Watch(ctx)
}

// dropFolder processes files written to dir once they stop changing.
type dropFolder struct {
	dir       string
	skip      string
	settle    time.Duration
	images    *gallery.Collection
	collector *metrics.Collector
	names     *storage.Names
	runner    atomic.Pointer[runner]
	logger    logging.Logger

	outMu  sync.Mutex
	out    io.Writer
	errOut io.Writer

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func (d *dropFolder) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.dir); err != nil {
		return fmt.Errorf("watch %s: %w", d.dir, err)
	}
	d.logger.Info("watching", zap.String("dir", d.dir))

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				d.shutdown()
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !d.candidate(e.Name) {
				continue
			}
			d.schedule(ctx, e.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				d.shutdown()
				return nil
			}
			d.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (d *dropFolder) candidate(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if d.skip != "" {
		if abs, err := filepath.Abs(path); err == nil && strings.HasPrefix(abs, d.skip+string(filepath.Separator)) {
			return false
		}
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// schedule (re)starts the settle timer for path.
func (d *dropFolder) schedule(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok && t.Stop() {
		t.Reset(d.settle)
		return
	}

	var t *time.Timer
	d.wg.Add(1)
	t = time.AfterFunc(d.settle, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.timers[path] == t {
			delete(d.timers, path)
		}
		d.mu.Unlock()

		d.process(ctx, path)
	})
	d.timers[path] = t
}

func (d *dropFolder) process(ctx context.Context, path string) {
	res := d.runner.Load().processFile(ctx, path)

	d.outMu.Lock()
	defer d.outMu.Unlock()

	if res.Err != nil {
		fmt.Fprintln(d.errOut, apperrors.NewErrorFormatter(false, false).Format(res.Err))
		return
	}
	if d.images.Len() > 1 {
		io.WriteString(d.out, "\n")
	}
	gallery.NewCard(res.Bundle).WriteTo(d.out)
}

// shutdown drops pending files and waits for running ones.
func (d *dropFolder) shutdown() {
	d.mu.Lock()
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
