package cli

import (
	"io"

	apperrors "github.com/leeforge/squash/errors"
	"github.com/leeforge/squash/gallery"
	"github.com/leeforge/squash/json"
	"github.com/leeforge/squash/media/compressor"
	"github.com/leeforge/squash/media/storage"
)

// Manifest is the --json output of the compress command.
type Manifest struct {
	Images   []ManifestEntry    `json:"images"`
	Failures []ManifestFailure  `json:"failures,omitempty"`
	Stats    map[string]float64 `json:"stats,omitempty"`
}

type ManifestEntry struct {
	File     string             `json:"file"`
	Status   string             `json:"status" default:"ok"`
	Card     gallery.Card       `json:"card"`
	Exported []storage.Exported `json:"exported,omitempty"`
	// Bundle carries the data URLs and is only set with --embed.
	Bundle *compressor.Bundle `json:"bundle,omitempty"`
}

type ManifestFailure struct {
	File    string `json:"file"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func buildManifest(results []fileResult, embed bool) *Manifest {
	m := &Manifest{Images: []ManifestEntry{}}
	for _, res := range results {
		if res.Err != nil {
			appErr := apperrors.FromError(res.Err)
			m.Failures = append(m.Failures, ManifestFailure{
				File:    res.Path,
				Type:    string(appErr.Type),
				Code:    appErr.Code,
				Message: res.Err.Error(),
			})
			continue
		}

		entry := ManifestEntry{
			File:     res.Path,
			Card:     gallery.NewCard(res.Bundle),
			Exported: res.Exported,
		}
		if embed {
			entry.Bundle = res.Bundle
		}
		m.Images = append(m.Images, entry)
	}
	return m
}

func writeManifest(w io.Writer, m *Manifest) error {
	for i := range m.Images {
		if err := json.SetDefaults(&m.Images[i]); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}
