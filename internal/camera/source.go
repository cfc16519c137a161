// Package camera provides frame sources standing in for the image sensor.
package camera

import (
	"context"
	"errors"
	"time"

	"github.com/dj-oyu/plant-monitor/internal/vision"
)

// ErrNoFrames is returned by sources that have nothing to deliver.
var ErrNoFrames = errors.New("camera: no frames available")

// Source delivers fresh frames. Capture blocks until a frame is ready; the
// returned frame belongs to the caller and may be annotated in place.
type Source interface {
	Capture(ctx context.Context) (*vision.Frame, error)
}

// pacer spaces captures at least interval apart, emulating sensor frame rate.
type pacer struct {
	interval time.Duration
	next     time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	now := time.Now()
	if d := p.next.Sub(now); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		now = p.next
	}
	p.next = now.Add(p.interval)
	return nil
}

// Exclusive serialises Capture calls on a shared sensor. A caller waiting for
// the sensor gives up when its context ends.
type Exclusive struct {
	src   Source
	token chan struct{}
}

func NewExclusive(src Source) *Exclusive {
	e := &Exclusive{src: src, token: make(chan struct{}, 1)}
	e.token <- struct{}{}
	return e
}

func (e *Exclusive) Capture(ctx context.Context) (*vision.Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.token:
	}
	defer func() { e.token <- struct{}{} }()
	return e.src.Capture(ctx)
}
