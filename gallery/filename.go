package gallery

import (
	"github.com/leeforge/squash/media/compressor"
	"github.com/leeforge/squash/utils"
)

// PatchFilename fills the original file name and extension the pipeline
// leaves empty. The name is the text before the first dot and the extension
// the text after the last dot, so "a.b.png" becomes ("a", "png") and a name
// without a dot is used for both.
func PatchFilename(b *compressor.Bundle, filename string) {
	if b == nil {
		return
	}
	b.OriginalFile.Name = utils.NameBeforeDot(filename)
	b.OriginalFile.Extension = utils.TextAfterLastDot(filename)
}
