package compressor

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/logging"
	"go.uber.org/zap"
)

// Recorder receives pipeline counters. *metrics.Collector satisfies it.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	AddCounter(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Metric names reported through Recorder.
const (
	MetricInvocations = "squash_invocations_total"
	MetricFailures    = "squash_failures_total"
	MetricRenditions  = "squash_renditions_total"
	MetricBytesIn     = "squash_bytes_in_total"
	MetricBytesOut    = "squash_bytes_out_total"
	MetricDuration    = "squash_invocation_duration_seconds"
)

type nopRecorder struct{}

func (nopRecorder) IncCounter(string, map[string]string)                {}
func (nopRecorder) AddCounter(string, float64, map[string]string)       {}
func (nopRecorder) ObserveHistogram(string, float64, map[string]string) {}

// Compressor runs the decode, resize and encode pipeline. It holds no
// per-invocation state and is safe for concurrent use; every call to
// Compress works on its own decoded source and its own surface.
type Compressor struct {
	scaler   Scaler
	encoders map[OutputExtension]Encoder
	surfaces *SurfacePool
	logger   logging.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option configures a Compressor.
type Option func(*Compressor)

func WithScaler(s Scaler) Option {
	return func(c *Compressor) {
		if s != nil {
			c.scaler = s
		}
	}
}

// WithEncoder registers enc for its extension, replacing the default.
func WithEncoder(enc Encoder) Option {
	return func(c *Compressor) {
		if enc != nil {
			c.encoders[enc.Extension()] = enc
		}
	}
}

func WithSurfaceLimits(limits SurfaceLimits) Option {
	return func(c *Compressor) {
		c.surfaces = NewSurfacePool(limits)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Compressor) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Compressor) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithClock sets the source of OriginalFile.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Compressor) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) *Compressor {
	c := &Compressor{
		scaler:   scalers[DefaultFilter],
		encoders: DefaultEncoders(),
		surfaces: NewSurfacePool(DefaultSurfaceLimits()),
		logger:   logging.Named("compressor"),
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compress processes raw and calls onComplete exactly once with the bundle
// when every rendition succeeded. On failure onComplete is not called and
// the error is returned. ctx only carries logging values.
func (c *Compressor) Compress(ctx context.Context, raw []byte, opts CompressOptions, onComplete func(*Bundle)) error {
	bundle, err := c.run(ctx, raw, opts)
	if err != nil {
		return err
	}
	if onComplete != nil {
		onComplete(bundle)
	}
	return nil
}

func (c *Compressor) run(ctx context.Context, raw []byte, opts CompressOptions) (_ *Bundle, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(raw) == 0 {
		err = apperrors.NewEmptyInput("no image data supplied")
		c.recordFailure(err)
		return nil, err
	}

	createdAt := c.now()
	ctx = logging.SetInvocationID(ctx, c.newID())
	log := logging.WithContext(c.logger, ctx)
	c.recorder.IncCounter(MetricInvocations, nil)

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Recover(r, apperrors.ErrorTypeInternal)
		}
		if err != nil {
			c.recordFailure(err)
			log.Warn("compression failed",
				zap.String("error_type", string(apperrors.TypeOf(err))),
				zap.Error(err))
		}
	}()

	if err = opts.Validate(); err != nil {
		return nil, err
	}

	src, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded source",
		zap.String("format", src.Format),
		zap.Int("width", src.Width),
		zap.Int("height", src.Height))

	target, err := ResolvePrimaryDimensions(src.Width, src.Height, opts.MaxAssetSize)
	if err != nil {
		return nil, apperrors.NewInvalid("maxAssetSize", opts.MaxAssetSize, err.Error())
	}
	width, height := target.Pixels()

	surface, err := c.surfaces.Acquire(width, height)
	if err != nil {
		return nil, err
	}
	defer c.surfaces.Release(surface)

	renderer := NewRenderer(surface, c.scaler, c.encoders)
	render := func(name string, w, h int) (Rendition, error) {
		r, err := renderer.RenderAndEncode(src, w, h, opts.OutputExtension)
		if err != nil {
			return Rendition{}, apperrors.Wrap(err, "render "+name)
		}
		log.Debug("rendered",
			zap.String("rendition", name),
			zap.Int("width", r.Width),
			zap.Int("height", r.Height),
			zap.Int("size", r.Size))
		return r, nil
	}

	bundle := &Bundle{
		OriginalFile: OriginalFile{
			Size:      len(raw),
			Width:     src.Width,
			Height:    src.Height,
			CreatedAt: createdAt,
		},
	}

	if bundle.ConvertedFile, err = render("converted", width, height); err != nil {
		return nil, err
	}

	if opts.GenerateExtraSizes {
		thumb, err := render("thumbnail", ThumbnailSize, ThumbnailSize)
		if err != nil {
			return nil, err
		}
		icon, err := render("icon", IconSize, IconSize)
		if err != nil {
			return nil, err
		}
		bundle.Thumbnail, bundle.Icon = &thumb, &icon
	}

	c.recordSuccess(bundle, opts, c.now().Sub(createdAt))
	log.Info("compressed",
		zap.Int("original_size", bundle.OriginalFile.Size),
		zap.Int("converted_size", bundle.ConvertedFile.Size),
		zap.String("extension", string(opts.OutputExtension)),
		zap.Bool("extra_sizes", bundle.HasExtraSizes()))
	return bundle, nil
}

func (c *Compressor) recordSuccess(b *Bundle, opts CompressOptions, elapsed time.Duration) {
	labels := map[string]string{"extension": string(opts.OutputExtension)}
	c.recorder.AddCounter(MetricBytesIn, float64(b.OriginalFile.Size), nil)
	for _, r := range b.Renditions() {
		c.recorder.IncCounter(MetricRenditions, labels)
		c.recorder.AddCounter(MetricBytesOut, float64(r.Size), labels)
	}
	c.recorder.ObserveHistogram(MetricDuration, elapsed.Seconds(), nil)
}

func (c *Compressor) recordFailure(err error) {
	c.recorder.IncCounter(MetricFailures, map[string]string{"type": string(apperrors.TypeOf(err))})
}

// Future is the pending result of CompressAsync.
type Future struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the invocation finishes.
func (f *Future) Wait() (*Bundle, error) {
	<-f.done
	return f.bundle, f.err
}

// CompressAsync starts an independent invocation on its own goroutine.
// Results of concurrent calls may complete in any order.
func (c *Compressor) CompressAsync(ctx context.Context, raw []byte, opts CompressOptions) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.err = c.Compress(ctx, raw, opts, func(b *Bundle) {
			f.bundle = b
		})
	}()
	return f
}
