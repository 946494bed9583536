package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/leeforge/squash/config"
	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/gallery"
	"github.com/leeforge/squash/logging"
	"github.com/leeforge/squash/media/compressor"
	"github.com/leeforge/squash/media/storage"
	"github.com/leeforge/squash/metrics"
	"github.com/leeforge/squash/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runner starts one independent compression per input file and collects
// the completed bundles.
type runner struct {
	compressor *compressor.Compressor
	options    compressor.CompressOptions
	images     *gallery.Collection
	collector  *metrics.Collector
	provider   storage.Provider
	folder     string
	names      *storage.Names
	jobs       int
	logger     logging.Logger
}

type fileResult struct {
	Path     string
	Bundle   *compressor.Bundle
	Exported []storage.Exported
	Err      error
}

func newRunner(app *config.AppConfig, images *gallery.Collection, collector *metrics.Collector, logger logging.Logger) (*runner, error) {
	scaler, err := compressor.NewScaler(compressor.Filter(app.Compress.Filter))
	if err != nil {
		return nil, apperrors.NewInvalid("filter", app.Compress.Filter, err.Error())
	}

	c := compressor.New(
		compressor.WithScaler(scaler),
		compressor.WithSurfaceLimits(compressor.SurfaceLimits{
			MaxDimension: app.Compress.MaxSurfaceDimension,
			MaxArea:      app.Compress.MaxSurfaceArea,
		}),
		compressor.WithLogger(logger.Named("compressor")),
		compressor.WithRecorder(collector),
	)

	opts := optionsFromConfig(app.Compress)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &runner{
		compressor: c,
		options:    opts,
		images:     images,
		collector:  collector,
		logger:     logger,
	}, nil
}

func optionsFromConfig(c config.CompressConfig) compressor.CompressOptions {
	return compressor.CompressOptions{
		MaxAssetSize:       compressor.MaxAssetSize(c.MaxAssetSize),
		OutputExtension:    compressor.OutputExtension(c.OutputExtension),
		GenerateExtraSizes: c.GenerateExtraSizes,
	}
}

// withExport makes the runner write every completed bundle through p.
// names keeps export file names unique across every file it has seen.
func (r *runner) withExport(p storage.Provider, folder string, names *storage.Names) *runner {
	if names == nil {
		names = storage.NewNames()
	}
	r.provider, r.folder, r.names = p, folder, names
	return r
}

// exportName reserves the export name of the file at path.
func (r *runner) exportName(path string) string {
	return r.names.Reserve(filepath.Clean(path), utils.NameBeforeDot(filepath.Base(path)))
}

// processFile compresses one file. A file that cannot be read is passed on
// as empty input.
func (r *runner) processFile(ctx context.Context, path string) fileResult {
	res := fileResult{Path: path}
	name := filepath.Base(path)
	ctx = logging.SetFileName(ctx, name)

	raw, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("read input", zap.String("path", path), zap.Error(err))
		raw = nil
	}

	err = r.compressor.Compress(ctx, raw, r.options, func(b *compressor.Bundle) {
		gallery.PatchFilename(b, name)
		r.images.Append(b)
		res.Bundle = b
	})
	if err != nil {
		res.Err = apperrors.Wrap(err, name)
		return res
	}

	if r.provider != nil {
		res.Exported, err = storage.ExportBundle(ctx, r.provider, res.Bundle, r.folder, r.exportName(path))
		if err != nil {
			res.Err = apperrors.Wrap(err, name)
		}
	}
	return res
}

// run processes paths concurrently. Results keep the order of paths.
func (r *runner) run(ctx context.Context, paths []string) []fileResult {
	results := make([]fileResult, len(paths))

	if r.provider != nil {
		// Names are handed out in argument order so repeated runs agree.
		for _, path := range paths {
			r.exportName(path)
		}
	}

	var g errgroup.Group
	if r.jobs > 0 {
		g.SetLimit(r.jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = r.processFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// exportProvider picks the export target: a local directory when out is
// set, the configured storage when export is true, otherwise none.
func exportProvider(app *config.AppConfig, out string, export bool) (storage.Provider, string, error) {
	switch {
	case out != "":
		p, err := storage.NewLocalProvider(out, "")
		if err != nil {
			return nil, "", apperrors.NewStorage("open output directory", err)
		}
		return p, "", nil
	case export:
		p, err := storage.NewProviderFromConfig(app.Storage)
		if err != nil {
			return nil, "", apperrors.NewStorage("open storage", err)
		}
		folder := ""
		if app.Storage.Type == "oss" {
			folder = app.Storage.OSS.Folder
		}
		return p, folder, nil
	}
	return nil, "", nil
}
