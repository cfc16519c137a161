package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/dj-oyu/plant-monitor/internal/vision"
	"github.com/dj-oyu/plant-monitor/pkg/types"
)

var (
	leafGreen  = color.RGBA{R: 60, G: 160, B: 60, A: 255}
	leafYellow = color.RGBA{R: 220, G: 180, B: 65, A: 255}
	fruitRed   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	soil       = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

func scene(w, h int, patches map[image.Rectangle]color.RGBA) *vision.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, soil)
		}
	}
	for r, c := range patches {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return vision.NewFrame(img)
}

// stubDetector returns canned blobs per threshold.
type stubDetector map[vision.ColorThreshold][]vision.Blob

func (s stubDetector) FindBlobs(_ *vision.Frame, t vision.ColorThreshold, _, _ int) []vision.Blob {
	return s[t]
}

func blobOfArea(x, w, h int) vision.Blob {
	return vision.Blob{Rect: image.Rect(x, 0, x+w, h), Pixels: w * h}
}

func TestHealthRatio(t *testing.T) {
	tests := []struct {
		name          string
		green, yellow int
		want          float64
	}{
		{"nothing detected", 0, 0, 0},
		{"all green", 600, 0, 100},
		{"all yellow", 0, 450, 0},
		{"even split", 400, 400, 50},
		{"three quarters", 900, 300, 75},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HealthRatio(tc.green, tc.yellow); got != tc.want {
				t.Errorf("HealthRatio(%d, %d) = %v, want %v", tc.green, tc.yellow, got, tc.want)
			}
		})
	}
}

func TestHealthRatioBounded(t *testing.T) {
	for g := 0; g <= 2000; g += 137 {
		for y := 0; y <= 2000; y += 151 {
			r := HealthRatio(g, y)
			if r < 0 || r > 100 {
				t.Fatalf("HealthRatio(%d, %d) = %v out of [0,100]", g, y, r)
			}
		}
	}
}

func TestAnalyzeEmptyFrame(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	got := a.Analyze(scene(160, 120, nil))

	if got != (types.AnalysisResult{}) {
		t.Fatalf("Analyze(empty) = %+v, want zero result", got)
	}
}

func TestAnalyzeGreenOnly(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(160, 120, map[image.Rectangle]color.RGBA{
		image.Rect(10, 10, 40, 30): leafGreen, // 600 px
	})

	got := a.Analyze(f)
	want := types.AnalysisResult{PlantDetected: true, HealthRatio: 100, GreenArea: 600}
	if got != want {
		t.Fatalf("Analyze = %+v, want %+v", got, want)
	}
}

func TestAnalyzeMixedScene(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(200, 120, map[image.Rectangle]color.RGBA{
		image.Rect(0, 0, 30, 20):     leafGreen,  // 600
		image.Rect(50, 0, 80, 20):    leafYellow, // 600
		image.Rect(100, 50, 120, 70): fruitRed,   // 400
	})

	got := a.Analyze(f)
	if !got.PlantDetected || !got.FruitDetected {
		t.Fatalf("flags = %+v", got)
	}
	if got.GreenArea != 600 || got.YellowArea != 600 {
		t.Fatalf("areas = %d/%d, want 600/600", got.GreenArea, got.YellowArea)
	}
	if got.HealthRatio != 50 {
		t.Fatalf("HealthRatio = %v, want 50 (fruit area excluded)", got.HealthRatio)
	}
}

func TestAnalyzeDropsSmallGreen(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(100, 100, map[image.Rectangle]color.RGBA{
		image.Rect(0, 0, 20, 20):   leafGreen,  // 400 < 500
		image.Rect(50, 50, 70, 70): leafYellow, // 400 >= 300
	})

	got := a.Analyze(f)
	if got.PlantDetected || got.GreenArea != 0 {
		t.Fatalf("undersized green blob counted: %+v", got)
	}
	if got.YellowArea != 400 || got.HealthRatio != 0 {
		t.Fatalf("yellow-only result = %+v", got)
	}
}

func TestAnalyzeSumsAllBlobs(t *testing.T) {
	classes := DefaultClasses()
	a := New(stubDetector{
		classes.Green.Threshold:  {blobOfArea(0, 20, 20), blobOfArea(30, 20, 20)},
		classes.Yellow.Threshold: {blobOfArea(60, 20, 20)},
	}, classes)

	got := a.Analyze(scene(10, 10, nil))
	if got.GreenArea != 800 || got.YellowArea != 400 {
		t.Fatalf("areas = %d/%d, want 800/400", got.GreenArea, got.YellowArea)
	}
}

func TestAnalyzeFourHundredEachIsFifty(t *testing.T) {
	classes := DefaultClasses()
	a := New(stubDetector{
		classes.Green.Threshold:  {blobOfArea(0, 20, 20)},
		classes.Yellow.Threshold: {blobOfArea(40, 20, 20)},
	}, classes)

	if got := a.Analyze(scene(10, 10, nil)).HealthRatio; got != 50 {
		t.Fatalf("HealthRatio = %v, want 50", got)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(160, 120, map[image.Rectangle]color.RGBA{
		image.Rect(5, 5, 60, 40):    leafGreen,
		image.Rect(70, 70, 100, 90): leafYellow,
	})

	first := a.Analyze(f)
	second := a.Analyze(f)
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestAnalyzeAndAnnotateDrawsFirstBlobOnly(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(200, 100, map[image.Rectangle]color.RGBA{
		image.Rect(10, 10, 40, 30):   leafGreen,
		image.Rect(100, 60, 130, 80): leafGreen,
		image.Rect(150, 10, 170, 30): fruitRed,
	})

	got := a.AnalyzeAndAnnotate(f)
	if !got.PlantDetected || !got.FruitDetected || got.GreenArea != 1200 {
		t.Fatalf("result = %+v", got)
	}
	if c := f.Image.RGBAAt(10, 10); c != vision.ColorPlant {
		t.Errorf("first green blob not outlined: %v", c)
	}
	if c := f.Image.RGBAAt(100, 60); c != leafGreen {
		t.Errorf("second green blob outlined: %v", c)
	}
	if c := f.Image.RGBAAt(150, 10); c != vision.ColorFruit {
		t.Errorf("fruit not outlined: %v", c)
	}
}

func TestAnalyzeLeavesFrameUntouched(t *testing.T) {
	a := New(vision.NewLabDetector(), DefaultClasses())
	f := scene(80, 60, map[image.Rectangle]color.RGBA{image.Rect(0, 0, 30, 20): leafGreen})
	before := f.Clone()

	a.Analyze(f)
	for i := range f.Image.Pix {
		if f.Image.Pix[i] != before.Image.Pix[i] {
			t.Fatal("Analyze modified the frame")
		}
	}
}

func TestDefaultClassesValid(t *testing.T) {
	if err := DefaultClasses().Validate(); err != nil {
		t.Fatalf("default classes invalid: %v", err)
	}

	bad := DefaultClasses()
	bad.Red.Threshold.AMin = 200
	bad.Yellow.MinArea = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate accepted inverted threshold")
	}
}
