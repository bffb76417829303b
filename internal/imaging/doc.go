// Package imaging is the raster compositor.
//
// It decodes raster inputs (PNG, JPEG, GIF, BMP, TIFF) with EXIF
// auto-orientation, paints redaction styles onto a Canvas, and re-encodes the
// result. The output is always encoded from the canvas pixels, never patched
// from the input bytes, so EXIF, XMP and any other ancillary chunks of the
// source are dropped as a side effect.
//
// # Coordinate System
//
// All coordinates are pixels with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. Rectangles arrive as coords.Rect values
// already scaled by the resolver; the canvas rounds them outward to whole
// pixels so partially covered pixels are redacted too.
//
// # Canvas
//
// Canvas implements compose.Surface on top of a gg drawing context:
//   - Fill and Stroke use rounded rectangle paths when a radius is set
//   - Blur re-draws the region through a Gaussian filter inside a clip
//   - Pixelate downsamples with a box filter and upsamples nearest-neighbour
//   - Text uses the Go Regular font with real glyph metrics
//   - Pattern draws lines, dots and waves, or tiles generated noise
//   - Gradient fills with a linear gradient
//
// # Review Images
//
// Annotate outlines detections on a copy of a page with small labels and an
// optional coordinate grid, and Preview downsizes an image for transport.
// Neither is used for redaction output.
//
// # Thread Safety
//
// A Canvas belongs to one document pipeline and is not safe for concurrent
// use. DecodeCache is safe for concurrent use; the images it returns are
// shared and must be treated as read-only, which NewCanvas guarantees by
// drawing on a copy.
package imaging
