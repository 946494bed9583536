package gallery

import (
	"fmt"
	"io"
	"strings"

	"github.com/leeforge/squash/media/compressor"
	"github.com/leeforge/squash/utils"
)

// Facts is one side of a card.
type Facts struct {
	Extension  string `json:"extension"`
	Size       string `json:"size"`
	Dimensions string `json:"dimensions"`
}

// Card summarizes one processed image.
type Card struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Original  Facts  `json:"original"`
	Converted Facts  `json:"converted"`
	Reduction string `json:"reduction"`
	// Thumbnail and Icon hold formatted sizes, empty when not generated.
	Thumbnail string `json:"thumbnail,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

func NewCard(b *compressor.Bundle) Card {
	o, c := b.OriginalFile, b.ConvertedFile
	card := Card{
		Name: o.Name,
		Date: FormatDate(o.CreatedAt),
		Original: Facts{
			Extension:  utils.UpperLabel(o.Extension),
			Size:       FormatBytes(int64(o.Size)),
			Dimensions: FormatDimensions(o.Width, o.Height),
		},
		Converted: Facts{
			Extension:  utils.UpperLabel(string(c.Extension)),
			Size:       FormatBytes(int64(c.Size)),
			Dimensions: FormatDimensions(c.Width, c.Height),
		},
		Reduction: fmt.Sprintf("%.1f%%", ReductionPercent(o.Size, c.Size)),
	}
	if b.Thumbnail != nil {
		card.Thumbnail = FormatBytes(int64(b.Thumbnail.Size))
	}
	if b.Icon != nil {
		card.Icon = FormatBytes(int64(b.Icon.Size))
	}
	return card
}

// WriteTo renders the card as aligned text.
func (c Card) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  (%s)\n", c.Name, c.Date)
	row := func(label, value string) {
		fmt.Fprintf(&sb, "  %-12s %s\n", label, value)
	}
	row("Original:", c.Original.Extension)
	row("Size:", c.Original.Size)
	row("Dimensions:", c.Original.Dimensions)
	row("Converted:", c.Converted.Extension)
	row("Size:", c.Converted.Size)
	row("Dimensions:", c.Converted.Dimensions)
	row("Saved:", c.Reduction)
	if c.Thumbnail != "" || c.Icon != "" {
		row(FormatDimensions(compressor.ThumbnailSize, compressor.ThumbnailSize)+" px", c.Thumbnail)
		row(FormatDimensions(compressor.IconSize, compressor.IconSize)+" px", c.Icon)
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
