package vision

import "image"

// LabDetector segments frames in pure Go: threshold mask, then 8-connected labelling.
type LabDetector struct{}

// NewLabDetector returns the default detector.
func NewLabDetector() *LabDetector {
	return &LabDetector{}
}

// FindBlobs implements BlobDetector.
func (d *LabDetector) FindBlobs(f *Frame, t ColorThreshold, minPixels, minArea int) []Blob {
	bounds := f.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l, a, b := f.LabAt(bounds.Min.X+x, bounds.Min.Y+y)
			mask[y*w+x] = t.Contains(l, a, b)
		}
	}

	var blobs []Blob
	stack := make([]int, 0, 256)
	for start := range mask {
		if !mask[start] {
			continue
		}

		// Matched pixels are cleared as they are claimed, so mask doubles as the visited set.
		mask[start] = false
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := w, h, -1, -1
		pixels := 0

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			pixels++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					n := ny*w + nx
					if mask[n] {
						mask[n] = false
						stack = append(stack, n)
					}
				}
			}
		}

		blob := Blob{
			Rect:   image.Rect(minX, minY, maxX+1, maxY+1).Add(bounds.Min),
			Pixels: pixels,
		}
		if blob.Pixels >= minPixels && blob.Area() >= minArea {
			blobs = append(blobs, blob)
		}
	}
	return blobs
}
