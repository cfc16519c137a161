// Package analyzer turns a frame into plant presence, health ratio and fruit presence.
package analyzer

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/dj-oyu/plant-monitor/internal/vision"
	"github.com/dj-oyu/plant-monitor/pkg/types"
)

// Class is one colour class searched in every frame.
type Class struct {
	Name      string
	Threshold vision.ColorThreshold
	MinPixels int
	MinArea   int
	Color     color.RGBA // annotation colour
}

// Classes are the three searches run per frame. Their thresholds may overlap.
type Classes struct {
	Green  Class // healthy leaf
	Yellow Class // unhealthy leaf
	Red    Class // fruit
}

// DefaultClasses returns the compiled-in thresholds and size minimums.
func DefaultClasses() Classes {
	return Classes{
		Green: Class{
			Name:      "plant",
			Threshold: vision.Threshold(30, 100, -70, -10, -10, 60),
			MinPixels: 500,
			MinArea:   500,
			Color:     vision.ColorPlant,
		},
		Yellow: Class{
			Name:      "yellowing",
			Threshold: vision.Threshold(50, 100, -10, 40, 40, 80),
			MinPixels: 300,
			MinArea:   300,
			Color:     vision.ColorYellow,
		},
		Red: Class{
			Name:      "fruit",
			Threshold: vision.Threshold(30, 100, 15, 127, 15, 127),
			MinPixels: 300,
			MinArea:   300,
			Color:     vision.ColorFruit,
		},
	}
}

// Validate checks every threshold and rejects negative size minimums.
func (c Classes) Validate() error {
	var errs []error
	for _, cl := range []Class{c.Green, c.Yellow, c.Red} {
		if err := cl.Threshold.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s threshold: %w", cl.Name, err))
		}
		if cl.MinPixels < 0 || cl.MinArea < 0 {
			errs = append(errs, fmt.Errorf("%s: negative size minimum", cl.Name))
		}
	}
	return errors.Join(errs...)
}

// Analyzer runs the green, yellow and red blob searches over frames.
type Analyzer struct {
	detector vision.BlobDetector
	classes  Classes
}

// New returns an Analyzer using detector for every search.
func New(detector vision.BlobDetector, classes Classes) *Analyzer {
	return &Analyzer{detector: detector, classes: classes}
}

// Classes returns the searches this analyzer runs.
func (a *Analyzer) Classes() Classes {
	return a.classes
}

type detections struct {
	green, yellow, red []vision.Blob
}

func (a *Analyzer) detect(f *vision.Frame) detections {
	search := func(c Class) []vision.Blob {
		return a.detector.FindBlobs(f, c.Threshold, c.MinPixels, c.MinArea)
	}
	return detections{
		green:  search(a.classes.Green),
		yellow: search(a.classes.Yellow),
		red:    search(a.classes.Red),
	}
}

// Analyze derives the result without touching the frame.
func (a *Analyzer) Analyze(f *vision.Frame) types.AnalysisResult {
	return a.detect(f).result()
}

// AnalyzeAndAnnotate derives the result and outlines the first blob of each
// detected class on the frame. All searches finish before anything is drawn.
func (a *Analyzer) AnalyzeAndAnnotate(f *vision.Frame) types.AnalysisResult {
	d := a.detect(f)
	for _, hit := range []struct {
		blobs []vision.Blob
		class Class
	}{
		{d.green, a.classes.Green},
		{d.yellow, a.classes.Yellow},
		{d.red, a.classes.Red},
	} {
		if len(hit.blobs) > 0 {
			f.DrawRectangle(hit.blobs[0].Rect, hit.class.Color)
		}
	}
	return d.result()
}

func (d detections) result() types.AnalysisResult {
	green := vision.TotalArea(d.green)
	yellow := vision.TotalArea(d.yellow)
	return types.AnalysisResult{
		PlantDetected: len(d.green) > 0,
		HealthRatio:   HealthRatio(green, yellow),
		FruitDetected: len(d.red) > 0,
		GreenArea:     green,
		YellowArea:    yellow,
	}
}

// HealthRatio is the green share of green+yellow area as a percentage, or 0
// when neither is present. Fruit area never enters the denominator.
func HealthRatio(greenArea, yellowArea int) float64 {
	total := greenArea + yellowArea
	if total <= 0 {
		return 0
	}
	return 100 * float64(greenArea) / float64(total)
}
