package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/leeforge/squash/logging"
	"github.com/leeforge/squash/media/compressor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundle(name string, extra bool) *compressor.Bundle {
	b := &compressor.Bundle{
		OriginalFile: compressor.OriginalFile{
			Name:      name,
			Extension: "png",
			Size:      2 * 1024 * 1024,
			Width:     4000,
			Height:    3000,
			CreatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		},
		ConvertedFile: compressor.Rendition{
			URL: "data:image/webp;base64,AAAA", Extension: compressor.ExtensionWebP,
			Size: 512 * 1024, Width: 1440, Height: 1080,
		},
	}
	if extra {
		b.Thumbnail = &compressor.Rendition{Extension: compressor.ExtensionWebP, Size: 1536, Width: 150, Height: 150}
		b.Icon = &compressor.Rendition{Extension: compressor.ExtensionWebP, Size: 300, Width: 50, Height: 50}
	}
	return b
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1024 * 1024, "1 MB"},
		{1024*1024 - 1, "1024 KB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072 GB"},
		{-2048, "-2 KB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.n), "n=%d", tt.n)
	}
}

func TestFormatDateAndDimensions(t *testing.T) {
	assert.Equal(t, "Mar 9, 2024", FormatDate(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1440×1080", FormatDimensions(1440, 1080))
}

func TestReductionPercent(t *testing.T) {
	assert.InDelta(t, 75.0, ReductionPercent(1000, 250), 1e-9)
	assert.InDelta(t, -50.0, ReductionPercent(100, 150), 1e-9)
	assert.Zero(t, ReductionPercent(0, 10))
}

func TestPatchFilename(t *testing.T) {
	tests := []struct {
		filename, name, ext string
	}{
		{"holiday.jpg", "holiday", "jpg"},
		{"holiday.2024.final.png", "holiday", "png"},
		{"noext", "noext", "noext"},
	}
	for _, tt := range tests {
		b := &compressor.Bundle{}
		PatchFilename(b, tt.filename)
		assert.Equal(t, tt.name, b.OriginalFile.Name, tt.filename)
		assert.Equal(t, tt.ext, b.OriginalFile.Extension, tt.filename)
	}
	assert.NotPanics(t, func() { PatchFilename(nil, "a.png") })
}

func TestCollectionConcurrentAppend(t *testing.T) {
	c := NewCollection()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Append(bundle(fmt.Sprint(i), false))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	all := c.All()
	require.Len(t, all, 50)

	b, ok := c.At(49)
	assert.True(t, ok)
	assert.Same(t, all[49], b)

	_, ok = c.At(50)
	assert.False(t, ok)
	_, ok = c.At(-1)
	assert.False(t, ok)
}

func TestCollectionUnchangedByFailedCompression(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	good := buf.Bytes()
	corrupt := append([]byte("not an image"), good[16:]...)

	c := compressor.New(compressor.WithLogger(logging.NewNop()))
	opts := compressor.CompressOptions{
		MaxAssetSize:    compressor.MaxAssetSize1080p,
		OutputExtension: compressor.ExtensionJPEG,
	}

	images := NewCollection()
	appendTo := func(b *compressor.Bundle) {
		PatchFilename(b, "ok.png")
		images.Append(b)
	}

	require.NoError(t, c.Compress(context.Background(), good, opts, appendTo))
	require.Equal(t, 1, images.Len())

	err := c.Compress(context.Background(), corrupt, opts, appendTo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compressor.ErrDecode))
	assert.Equal(t, 1, images.Len())

	err = c.Compress(context.Background(), nil, opts, appendTo)
	assert.True(t, errors.Is(err, compressor.ErrEmptyInput))
	assert.Equal(t, 1, images.Len())

	got, ok := images.At(0)
	require.True(t, ok)
	assert.Equal(t, "ok", got.OriginalFile.Name)
}

func TestCollectionSnapshotIsIndependent(t *testing.T) {
	c := NewCollection()
	c.Append(bundle("a", false))
	snap := c.All()
	c.Append(bundle("b", false))
	assert.Len(t, snap, 1)
	assert.Equal(t, 2, c.Len())
}

func TestPreviewNavigation(t *testing.T) {
	c := NewCollection()
	c.Append(bundle("a", true))
	c.Append(bundle("b", false))
	c.Append(bundle("c", true))

	p := NewPreview(c)
	assert.Nil(t, p.Current())
	assert.Error(t, p.Open(3))

	require.NoError(t, p.Open(2))
	assert.True(t, p.IsOpen())
	assert.Equal(t, 1440, p.Current().Width)

	p.Next()
	assert.Equal(t, 0, p.Index(), "next wraps to the first image")
	p.Previous()
	assert.Equal(t, 2, p.Index(), "previous wraps to the last image")
	p.Previous()
	assert.Equal(t, 1, p.Index())

	require.NoError(t, p.Select(VariantThumbnail))
	assert.Nil(t, p.Current(), "image b has no thumbnail")
	p.Next()
	require.NotNil(t, p.Current())
	assert.Equal(t, 150, p.Current().Width)

	assert.Error(t, p.Select("poster"))
	assert.Equal(t, VariantThumbnail, p.Variant())

	p.Close()
	assert.False(t, p.IsOpen())
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, VariantConverted, p.Variant())
	assert.Nil(t, p.Current())
}

func TestPreviewEmptyCollection(t *testing.T) {
	p := NewPreview(NewCollection())
	p.Next()
	p.Previous()
	assert.Equal(t, 0, p.Index())
	assert.Error(t, p.Open(0))
}

func TestVariants(t *testing.T) {
	assert.Equal(t, []Variant{VariantConverted}, Variants(bundle("a", false)))
	assert.Equal(t, []Variant{VariantConverted, VariantThumbnail, VariantIcon}, Variants(bundle("a", true)))
	assert.Equal(t, "Full Size", VariantConverted.Label())
	assert.Equal(t, "Icon", VariantIcon.Label())
}

func TestNewCard(t *testing.T) {
	card := NewCard(bundle("holiday", true))

	assert.Equal(t, "holiday", card.Name)
	assert.Equal(t, "Mar 9, 2024", card.Date)
	assert.Equal(t, Facts{Extension: "PNG", Size: "2 MB", Dimensions: "4000×3000"}, card.Original)
	assert.Equal(t, Facts{Extension: "WEBP", Size: "512 KB", Dimensions: "1440×1080"}, card.Converted)
	assert.Equal(t, "75.0%", card.Reduction)
	assert.Equal(t, "1.5 KB", card.Thumbnail)
	assert.Equal(t, "300 Bytes", card.Icon)

	var buf bytes.Buffer
	_, err := card.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "holiday  (Mar 9, 2024)")
	assert.Contains(t, out, "150×150 px")
	assert.Contains(t, out, "WEBP")

	buf.Reset()
	_, err = NewCard(bundle("plain", false)).WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "150×150")
}
