//go:build !gocv

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
		return nil, fmt.Errorf("detector %q requires a build with -tags gocv", name)
	}
	return nil, fmt.Errorf("unknown detector %q", name)
}
