package cli

import (
	"fmt"
	"io"

	"github.com/leeforge/squash/config"
	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/gallery"
	"github.com/leeforge/squash/media/storage"
	"github.com/leeforge/squash/metrics"
	"github.com/spf13/cobra"
)

type CompressOptions struct {
	MaxSize    string
	Format     string
	ExtraSizes bool
	Filter     string
	Out        string
	Export     bool
	JSON       bool
	Embed      bool
	Stats      bool
	Jobs       int
}

func NewCompressCommand(globalOptions *GlobalOptions) *cobra.Command {
	compressOptions := &CompressOptions{}

	compressCmd := &cobra.Command{
		Use:   "compress FILE...",
		Short: "Compress one or more image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compressOptions.run(cmd, globalOptions, args)
		},
	}

	compressOptions.registerFlags(compressCmd)
	return compressCmd
}

func (options *CompressOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&options.MaxSize, "max-size", "", "Bounding box for the converted image: 1920x1080 or 1280x720. (Env: SQUASH_COMPRESS_MAX_ASSET_SIZE)")
	cmd.Flags().StringVar(&options.Format, "format", "", "Output format: webp or jpeg. (Env: SQUASH_COMPRESS_OUTPUT_EXTENSION)")
	cmd.Flags().BoolVar(&options.ExtraSizes, "extra-sizes", false, "Also produce 150x150 and 50x50 renditions. (Env: SQUASH_COMPRESS_GENERATE_EXTRA_SIZES)")
	cmd.Flags().StringVar(&options.Filter, "filter", "", "Resampling filter. (Env: SQUASH_COMPRESS_FILTER)")
	cmd.Flags().StringVar(&options.Out, "out", "", "Write renditions to this directory.")
	cmd.Flags().BoolVar(&options.Export, "export", false, "Write renditions to the configured storage.")
	cmd.Flags().BoolVar(&options.JSON, "json", false, "Print a JSON manifest instead of cards.")
	cmd.Flags().BoolVar(&options.Embed, "embed", false, "Include data URLs in the JSON manifest.")
	cmd.Flags().BoolVar(&options.Stats, "stats", false, "Print pipeline counters to stderr.")
	cmd.Flags().IntVar(&options.Jobs, "jobs", 0, "Maximum files compressed at once; 0 means no limit.")
}

// applyOverrides copies explicitly set flags over the configured values.
func (options *CompressOptions) applyOverrides(cmd *cobra.Command, c *config.CompressConfig) {
	if cmd.Flags().Changed("max-size") {
		c.MaxAssetSize = options.MaxSize
	}
	if cmd.Flags().Changed("format") {
		c.OutputExtension = options.Format
	}
	if cmd.Flags().Changed("extra-sizes") {
		c.GenerateExtraSizes = options.ExtraSizes
	}
	if cmd.Flags().Changed("filter") {
		c.Filter = options.Filter
	}
}

func (options *CompressOptions) run(cmd *cobra.Command, globalOptions *GlobalOptions, paths []string) error {
	app := *globalOptions.App()
	options.applyOverrides(cmd, &app.Compress)
	if err := app.Validate(); err != nil {
		return apperrors.NewConfig("invalid compress flags", err)
	}

	images := gallery.NewCollection()
	collector := metrics.NewCollector()
	r, err := newRunner(&app, images, collector, globalOptions.Logger())
	if err != nil {
		return err
	}
	r.jobs = options.Jobs

	provider, folder, err := exportProvider(&app, options.Out, options.Export)
	if err != nil {
		return err
	}
	if provider != nil {
		r.withExport(provider, folder, storage.NewNames())
	}

	results := r.run(cmd.Context(), paths)

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if options.JSON {
		m := buildManifest(results, options.Embed)
		if options.Stats {
			m.Stats = summary(collector)
		}
		if err := writeManifest(out, m); err != nil {
			return err
		}
	} else {
		if err := writeCards(out, images); err != nil {
			return err
		}
		if options.Stats {
			if err := metrics.WriteText(errOut, collector); err != nil {
				return err
			}
		}
	}

	return reportFailures(errOut, results, !options.JSON)
}

// writeCards prints one card per image in completion order.
func writeCards(w io.Writer, images *gallery.Collection) error {
	for i, b := range images.All() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := gallery.NewCard(b).WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func reportFailures(w io.Writer, results []fileResult, print bool) error {
	formatter := apperrors.NewErrorFormatter(false, false)
	failed := 0
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		if print {
			fmt.Fprintln(w, formatter.Format(res.Err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func summary(c *metrics.Collector) map[string]float64 {
	out := map[string]float64{}
	for _, m := range c.GetMetrics() {
		if m.Type == "histogram" {
			continue
		}
		out[m.Name] += m.Value
	}
	return out
}
