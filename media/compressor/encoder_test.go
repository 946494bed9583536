package compressor

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

func TestEstimateDecodedSize(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{4, 3},
		{8, 6},
		{1000, 750},
		// ceil rounding for lengths that are not a multiple of four
		{5, 4},
		{6, 5},
		{7, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateDecodedSize(tt.n), "n=%d", tt.n)
	}
}

func TestEstimateCountsPadding(t *testing.T) {
	raw := []byte{1, 2, 3, 4} // encodes to 8 chars, two of them padding
	payload := encodeBase64(raw)
	require.Len(t, payload, 8)
	assert.Equal(t, 6, EstimateDecodedSize(len(payload)))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/webp;base64,AAAA", DataURL("image/webp", "AAAA"))
}

func TestEncodersProduceDecodableOutput(t *testing.T) {
	src := gradient(40, 30)
	encoders := DefaultEncoders()

	var buf bytes.Buffer
	require.NoError(t, encoders[ExtensionJPEG].Encode(&buf, src, Quality))
	cfg, err := jpeg.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)

	buf.Reset()
	require.NoError(t, encoders[ExtensionWebP].Encode(&buf, src, Quality))
	cfg, err = xwebp.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)

	for ext, enc := range encoders {
		assert.Equal(t, ext, enc.Extension())
		assert.Equal(t, ext.MIMEType(), enc.MIMEType())
	}
}

func TestRenditionBytes(t *testing.T) {
	r := Rendition{URL: DataURL("image/jpeg", encodeBase64([]byte("hello")))}
	got, err := r.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = Rendition{URL: "https://example.com/a.webp"}.Bytes()
	assert.Error(t, err)
	_, err = Rendition{URL: "data:image/webp,plain"}.Bytes()
	assert.Error(t, err)
}

func TestRenderAndEncode(t *testing.T) {
	pool := NewSurfacePool(DefaultSurfaceLimits())
	surface, err := pool.Acquire(1, 1)
	require.NoError(t, err)
	defer pool.Release(surface)

	src := &Source{Image: gradient(64, 48), Format: "png", Width: 64, Height: 48}

	for _, filter := range Filters() {
		t.Run(string(filter), func(t *testing.T) {
			scaler, err := NewScaler(filter)
			require.NoError(t, err)

			r := NewRenderer(surface, scaler, DefaultEncoders())
			got, err := r.RenderAndEncode(src, 32, 24, ExtensionJPEG)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(got.URL, "data:image/jpeg;base64,"))
			assert.Equal(t, ExtensionJPEG, got.Extension)
			assert.Equal(t, 32, got.Width)
			assert.Equal(t, 24, got.Height)

			payload := strings.TrimPrefix(got.URL, "data:image/jpeg;base64,")
			assert.Equal(t, EstimateDecodedSize(len(payload)), got.Size)

			raw, err := got.Bytes()
			require.NoError(t, err)
			img, err := jpeg.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())
		})
	}
}

func TestNewScalerUnknownFilter(t *testing.T) {
	_, err := NewScaler("sinc")
	assert.Error(t, err)

	s, err := NewScaler("")
	require.NoError(t, err)
	assert.Equal(t, scalers[DefaultFilter], s)
}
