package vision

import "image"

// Blob is a connected region of pixels matching one threshold.
type Blob struct {
	Rect   image.Rectangle
	Pixels int
}

// Area is the bounding box area in pixels.
func (b Blob) Area() int {
	return b.Rect.Dx() * b.Rect.Dy()
}

// BlobDetector finds the connected regions of a frame matching a threshold that have
// at least minPixels matching pixels and a bounding box of at least minArea.
// Blobs are returned in raster order of their first pixel.
type BlobDetector interface {
	FindBlobs(f *Frame, t ColorThreshold, minPixels, minArea int) []Blob
}

// TotalArea sums Area over blobs.
func TotalArea(blobs []Blob) int {
	total := 0
	for _, b := range blobs {
		total += b.Area()
	}
	return total
}
