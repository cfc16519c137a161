package server

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/dj-oyu/plant-monitor/internal/fps"
	"github.com/dj-oyu/plant-monitor/internal/httpwire"
	"github.com/dj-oyu/plant-monitor/internal/logger"
	"github.com/dj-oyu/plant-monitor/internal/mjpeg"
)

// ErrClientGone marks failures writing to or reading from the client.
var ErrClientGone = errors.New("client disconnected")

// StreamState is the state of an MJPEG stream session.
type StreamState int

const (
	StateStreaming StreamState = iota
	StateClosed
)

func (s StreamState) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "streaming"
}

var (
	captionFG = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	captionBG = color.RGBA{A: 255}
)

// streamSession sends annotated frames until the first failure. There is no
// retry; the client reconnects to resume.
type streamSession struct {
	srv   *Server
	w     io.Writer
	parts *mjpeg.PartWriter
	clock *fps.Clock
	log   *logger.Scope

	state StreamState
	err   error
}

func (s *Server) newStreamSession(w io.Writer, clock *fps.Clock, log *logger.Scope) *streamSession {
	return &streamSession{
		srv:   s,
		w:     w,
		parts: mjpeg.NewPartWriter(w),
		clock: clock,
		log:   log,
		state: StateStreaming,
	}
}

// run writes the header block once, then streams. It returns the reason the
// session closed.
func (st *streamSession) run(ctx context.Context) error {
	if err := write(st.w, httpwire.StreamHead()); err != nil {
		st.close(err)
		return st.err
	}

	m := st.srv.metrics
	m.ActiveStream.Store(1)
	defer m.ActiveStream.Store(0)

	for st.state == StateStreaming {
		if err := ctx.Err(); err != nil {
			st.close(err)
			break
		}
		if err := st.step(ctx); err != nil {
			st.close(err)
		}
	}

	if !errors.Is(st.err, context.Canceled) {
		m.StreamDisconnects.Add(1)
	}
	st.log.Info("Stream ended after %d frames", st.parts.Frames())
	return st.err
}

// step is one loop iteration: tick, capture, analyze and annotate, optional
// caption, encode, write.
func (st *streamSession) step(ctx context.Context) error {
	srv := st.srv

	st.clock.Tick()
	f, err := srv.capture(ctx)
	if err != nil {
		return err
	}
	srv.analyze(f, true)
	if srv.cfg.StreamCaption {
		f.DrawCaption(2, 2, fmt.Sprintf("%.1f fps", st.clock.FPS()), captionFG, captionBG)
	}

	data, err := srv.encoder.Encode(f.Image, srv.cfg.JPEGQuality)
	if err != nil {
		srv.metrics.EncodeErrors.Add(1)
		return err
	}
	if err := st.parts.WritePart(data); err != nil {
		return fmt.Errorf("%w: %w", ErrClientGone, err)
	}
	srv.metrics.FramesStreamed.Add(1)
	return nil
}

func (st *streamSession) close(reason error) {
	if st.state == StateClosed {
		return
	}
	st.state = StateClosed
	st.err = reason
}
