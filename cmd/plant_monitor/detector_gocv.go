//go:build gocv

package main

import (
	"fmt"

	"github.com/dj-oyu/plant-monitor/internal/vision"
)

func newDetector(name string) (vision.BlobDetector, error) {
	switch name {
	case "", "lab":
		return vision.NewLabDetector(), nil
	case "cv":
		return vision.NewCVDetector(), nil
	}
	return nil, fmt.Errorf("unknown detector %q", name)
}
