// Package gallery holds the caller-side state around compressed bundles:
// the ordered list of processed images, the preview cursor and the
// summaries shown for each image. The compressor never calls into it.
package gallery
