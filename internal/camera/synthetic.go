package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/dj-oyu/plant-monitor/internal/vision"
)

// Scene colours of the synthetic source.
var (
	Soil       = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	LeafGreen  = color.RGBA{R: 60, G: 160, B: 60, A: 255}
	LeafYellow = color.RGBA{R: 220, G: 180, B: 65, A: 255}
	FruitRed   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// Scene geometry, in a 320x240 frame.
var (
	LeafRect  = image.Rect(40, 40, 200, 200)
	FruitRect = image.Rect(240, 160, 280, 200)
)

// YellowRect returns the yellowing patch for frame seq. Its width cycles through
// seven steps so the health ratio moves over time.
func YellowRect(seq uint64) image.Rectangle {
	w := 20 + int(seq%7)*10
	return image.Rect(210, 60, 210+w, 120)
}

// SyntheticSource renders a deterministic plant scene.
type SyntheticSource struct {
	mu     sync.Mutex
	width  int
	height int
	seq    uint64
	pace   pacer
}

// NewSyntheticSource returns a source of width x height frames delivered at
// most once per interval. Scene geometry is fixed, so frames smaller than
// 320x240 are clipped.
func NewSyntheticSource(width, height int, interval time.Duration) *SyntheticSource {
	return &SyntheticSource{width: width, height: height, pace: pacer{interval: interval}}
}

func (s *SyntheticSource) Capture(ctx context.Context) (*vision.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pace.wait(ctx); err != nil {
		return nil, err
	}
	s.seq++

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	fill(img, img.Bounds(), Soil)
	fill(img, LeafRect, LeafGreen)
	fill(img, YellowRect(s.seq), LeafYellow)
	fill(img, FruitRect, FruitRed)

	f := vision.NewFrame(img)
	f.Seq = s.seq
	return f, nil
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
