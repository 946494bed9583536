package compressor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	xwebp "golang.org/x/image/webp"
)

type countingRecorder struct {
	mu       sync.Mutex
	counters map[string]float64
	observed map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counters: map[string]float64{}, observed: map[string]int{}}
}

func (r *countingRecorder) IncCounter(name string, labels map[string]string) {
	r.AddCounter(name, 1, labels)
}

func (r *countingRecorder) AddCounter(name string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += value
}

func (r *countingRecorder) ObserveHistogram(name string, _ float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed[name]++
}

type failingEncoder struct{}

func (failingEncoder) Extension() OutputExtension { return ExtensionJPEG }
func (failingEncoder) MIMEType() string           { return "image/jpeg" }

func (failingEncoder) Encode(io.Writer, image.Image, float64) error {
	return errors.New("encoder exploded")
}

func newTestCompressor(opts ...Option) *Compressor {
	return New(append([]Option{WithLogger(logging.NewNop())}, opts...)...)
}

func compressSync(t *testing.T, c *Compressor, raw []byte, opts CompressOptions) (*Bundle, int, error) {
	t.Helper()
	var got *Bundle
	calls := 0
	err := c.Compress(context.Background(), raw, opts, func(b *Bundle) {
		calls++
		got = b
	})
	return got, calls, err
}

func TestCompressDownscalesLargeImage(t *testing.T) {
	raw := jpegBytes(t, 4000, 3000)
	opts := CompressOptions{MaxAssetSize: MaxAssetSize1080p, OutputExtension: ExtensionJPEG}

	bundle, calls, err := compressSync(t, newTestCompressor(), raw, opts)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	assert.Equal(t, 1440, bundle.ConvertedFile.Width)
	assert.Equal(t, 1080, bundle.ConvertedFile.Height)
	assert.Equal(t, 4000, bundle.OriginalFile.Width)
	assert.Equal(t, 3000, bundle.OriginalFile.Height)
	assert.Nil(t, bundle.Thumbnail)
	assert.Nil(t, bundle.Icon)
}

func TestCompressKeepsFittingImage(t *testing.T) {
	raw := pngBytes(t, 800, 600)
	opts := CompressOptions{MaxAssetSize: MaxAssetSize1080p, OutputExtension: ExtensionWebP}

	bundle, calls, err := compressSync(t, newTestCompressor(), raw, opts)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	assert.Equal(t, 800, bundle.ConvertedFile.Width)
	assert.Equal(t, 600, bundle.ConvertedFile.Height)
	assert.Equal(t, ExtensionWebP, bundle.ConvertedFile.Extension)
	assert.True(t, strings.HasPrefix(bundle.ConvertedFile.URL, "data:image/webp;base64,"))

	payload, err := bundle.ConvertedFile.Bytes()
	require.NoError(t, err)
	cfg, err := xwebp.DecodeConfig(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestCompressExtraSizes(t *testing.T) {
	raw := pngBytes(t, 3000, 2000)
	opts := CompressOptions{MaxAssetSize: MaxAssetSize1080p, OutputExtension: ExtensionJPEG, GenerateExtraSizes: true}

	bundle, calls, err := compressSync(t, newTestCompressor(), raw, opts)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.True(t, bundle.HasExtraSizes())

	renditions := bundle.Renditions()
	require.Len(t, renditions, 3)
	assert.Equal(t, 1620, renditions[0].Width)
	assert.Equal(t, 1080, renditions[0].Height)
	assert.Equal(t, ThumbnailSize, renditions[1].Width)
	assert.Equal(t, ThumbnailSize, renditions[1].Height)
	assert.Equal(t, IconSize, renditions[2].Width)
	assert.Equal(t, IconSize, renditions[2].Height)

	for _, r := range renditions {
		assert.Equal(t, ExtensionJPEG, r.Extension)
		assert.Positive(t, r.Size)
	}
}

func TestCompressOriginalFile(t *testing.T) {
	raw := pngBytes(t, 64, 32)
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	c := newTestCompressor(WithClock(func() time.Time { return at }))

	bundle, _, err := compressSync(t, c, raw, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, len(raw), bundle.OriginalFile.Size)
	assert.Equal(t, 64, bundle.OriginalFile.Width)
	assert.Equal(t, 32, bundle.OriginalFile.Height)
	assert.Equal(t, at, bundle.OriginalFile.CreatedAt)
	assert.Empty(t, bundle.OriginalFile.Name)
	assert.Empty(t, bundle.OriginalFile.Extension)
}

func TestCompressCorruptInput(t *testing.T) {
	raw := jpegBytes(t, 10, 10)
	corrupt := append([]byte("not an image"), raw[20:]...)

	bundle, calls, err := compressSync(t, newTestCompressor(), corrupt, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Equal(t, apperrors.CodeDecodeFailed, apperrors.FromError(err).Code)
	assert.Zero(t, calls)
	assert.Nil(t, bundle)
}

func TestCompressEmptyInput(t *testing.T) {
	rec := newCountingRecorder()
	_, calls, err := compressSync(t, newTestCompressor(WithRecorder(rec)), nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Zero(t, calls)
	assert.Equal(t, float64(1), rec.counters[MetricFailures])
	assert.Zero(t, rec.counters[MetricInvocations])
}

func TestCompressInvalidOptions(t *testing.T) {
	opts := CompressOptions{MaxAssetSize: "100x100", OutputExtension: ExtensionWebP}
	_, calls, err := compressSync(t, newTestCompressor(), pngBytes(t, 10, 10), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	assert.Zero(t, calls)
}

func TestCompressSurfaceCreationFailure(t *testing.T) {
	c := newTestCompressor(WithSurfaceLimits(SurfaceLimits{MaxDimension: 500, MaxArea: 1 << 20}))

	_, calls, err := compressSync(t, c, pngBytes(t, 800, 600), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSurfaceCreation))
	assert.Zero(t, calls)
}

func TestCompressEncodeFailure(t *testing.T) {
	c := newTestCompressor(WithEncoder(failingEncoder{}))
	opts := CompressOptions{MaxAssetSize: MaxAssetSize1080p, OutputExtension: ExtensionJPEG, GenerateExtraSizes: true}

	_, calls, err := compressSync(t, c, pngBytes(t, 20, 20), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncode))
	assert.Contains(t, err.Error(), "encoder exploded")
	assert.Zero(t, calls)
}

func TestCompressRecordsMetrics(t *testing.T) {
	rec := newCountingRecorder()
	c := newTestCompressor(WithRecorder(rec))
	raw := pngBytes(t, 300, 200)
	opts := CompressOptions{MaxAssetSize: MaxAssetSize1080p, OutputExtension: ExtensionJPEG, GenerateExtraSizes: true}

	bundle, _, err := compressSync(t, c, raw, opts)
	require.NoError(t, err)

	var out float64
	for _, r := range bundle.Renditions() {
		out += float64(r.Size)
	}
	assert.Equal(t, float64(1), rec.counters[MetricInvocations])
	assert.Equal(t, float64(3), rec.counters[MetricRenditions])
	assert.Equal(t, float64(len(raw)), rec.counters[MetricBytesIn])
	assert.Equal(t, out, rec.counters[MetricBytesOut])
	assert.Equal(t, 1, rec.observed[MetricDuration])
	assert.Zero(t, rec.counters[MetricFailures])
}

func TestCompressLogsInvocationID(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "debug"
	logger := logging.NewLoggerTo(cfg, zapcore.AddSync(&buf))

	c := New(WithLogger(logger))
	c.newID = func() string { return "inv-1" }

	_, _, err := compressSync(t, c, pngBytes(t, 20, 20), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, `"invocation_id":"inv-1"`)
	assert.Contains(t, out, `"message":"compressed"`)
	assert.Contains(t, out, `"rendition":"converted"`)
}

func TestCompressAsync(t *testing.T) {
	c := newTestCompressor()
	opts := CompressOptions{MaxAssetSize: MaxAssetSize720p, OutputExtension: ExtensionJPEG, GenerateExtraSizes: true}

	inputs := [][]byte{
		pngBytes(t, 2000, 1000),
		jpegBytes(t, 300, 300),
		[]byte("garbage"),
		pngBytes(t, 100, 400),
	}

	futures := make([]*Future, len(inputs))
	for i, raw := range inputs {
		futures[i] = c.CompressAsync(context.Background(), raw, opts)
	}

	for i, f := range futures {
		select {
		case <-f.Done():
		case <-time.After(30 * time.Second):
			t.Fatalf("future %d did not complete", i)
		}

		bundle, err := f.Wait()
		if i == 2 {
			assert.True(t, errors.Is(err, ErrDecode))
			assert.Nil(t, bundle)
			continue
		}
		require.NoError(t, err)
		assert.Len(t, bundle.Renditions(), 3)
	}

	b, _ := futures[0].Wait()
	assert.Equal(t, 1280, b.ConvertedFile.Width)
	assert.Equal(t, 640, b.ConvertedFile.Height)
	b, _ = futures[3].Wait()
	assert.Equal(t, 100, b.ConvertedFile.Width)
	assert.Equal(t, 400, b.ConvertedFile.Height)
}
