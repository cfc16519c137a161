//go:build gocv

package vision

import (
	"image"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/dj-oyu/plant-monitor/internal/logger"
)

// CVDetector segments frames with OpenCV. Build with -tags gocv on boards that ship OpenCV.
type CVDetector struct {
	log      *logger.Scope
	toMat    func(image.Image) (gocv.Mat, error)
	failures atomic.Uint64
}

// NewCVDetector returns an OpenCV-backed BlobDetector.
func NewCVDetector() *CVDetector {
	return &CVDetector{log: logger.For("Vision"), toMat: gocv.ImageToMatRGB}
}

// Failures returns how many frames could not be converted to a Mat.
func (d *CVDetector) Failures() uint64 { return d.failures.Load() }

// FindBlobs implements BlobDetector. OpenCV's 8-bit Lab scales L to 0..255 and
// offsets a and b by 128, so the threshold is mapped into that space first.
func (d *CVDetector) FindBlobs(f *Frame, t ColorThreshold, minPixels, minArea int) []Blob {
	src, err := d.toMat(f.Image)
	if err != nil {
		d.failures.Add(1)
		d.log.Warn("ImageToMatRGB failed for %v frame: %v", f.Bounds(), err)
		return nil
	}
	defer src.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	lower := gocv.NewScalar(float64(t.LMin)*255/100, float64(t.AMin+128), float64(t.BMin+128), 0)
	upper := gocv.NewScalar(float64(t.LMax)*255/100, float64(t.AMax+128), float64(t.BMax+128), 0)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(lab, lower, upper, &mask)

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	origin := f.Bounds().Min
	var blobs []Blob
	// Label 0 is the background.
	for i := 1; i < n; i++ {
		left := int(stats.GetIntAt(i, int(gocv.CCStatLeft)))
		top := int(stats.GetIntAt(i, int(gocv.CCStatTop)))
		width := int(stats.GetIntAt(i, int(gocv.CCStatWidth)))
		height := int(stats.GetIntAt(i, int(gocv.CCStatHeight)))
		blob := Blob{
			Rect:   image.Rect(left, top, left+width, top+height).Add(origin),
			Pixels: int(stats.GetIntAt(i, int(gocv.CCStatArea))),
		}
		if blob.Pixels >= minPixels && blob.Area() >= minArea {
			blobs = append(blobs, blob)
		}
	}
	return blobs
}
