//go:build gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/dj-oyu/plant-monitor/internal/logger"
)

func TestCVDetectorFindsGreenPatch(t *testing.T) {
	f := newTestFrame(80, 60)
	fill(f, image.Rect(10, 10, 40, 30), testGreen)

	blobs := NewCVDetector().FindBlobs(f, green, 10, 10)
	if len(blobs) != 1 {
		t.Fatalf("blobs = %v, want one", blobs)
	}
	if blobs[0].Rect != image.Rect(10, 10, 40, 30) {
		t.Fatalf("rect = %v", blobs[0].Rect)
	}
}

func TestCVDetectorReportsConversionFailure(t *testing.T) {
	var buf bytes.Buffer
	d := NewCVDetector()
	d.log = logger.New(logger.DEBUG, &buf, false).With("Vision")
	empty := gocv.NewMat()
	defer empty.Close()
	d.toMat = func(image.Image) (gocv.Mat, error) {
		return empty, errors.New("unsupported image type")
	}

	f := newTestFrame(80, 60)
	fill(f, image.Rect(10, 10, 40, 30), testGreen)

	if blobs := d.FindBlobs(f, green, 0, 0); blobs != nil {
		t.Fatalf("blobs = %v, want nil", blobs)
	}
	if d.Failures() != 1 {
		t.Fatalf("failures = %d, want 1", d.Failures())
	}
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "unsupported image type") {
		t.Fatalf("log = %q, want a warning with the conversion error", out)
	}
}
