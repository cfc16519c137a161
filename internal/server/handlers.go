package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dj-oyu/plant-monitor/internal/fps"
	"github.com/dj-oyu/plant-monitor/internal/httpwire"
	"github.com/dj-oyu/plant-monitor/internal/logger"
	"github.com/dj-oyu/plant-monitor/internal/vision"
	"github.com/dj-oyu/plant-monitor/pkg/types"
)

// route reads the request, dispatches it and writes the response. A fresh FPS
// clock is created for every client.
func (s *Server) route(ctx context.Context, conn net.Conn, log *logger.Scope) error {
	raw, err := httpwire.ReadRequest(conn)
	if err != nil {
		return fmt.Errorf("%w: read request: %w", ErrClientGone, err)
	}

	route := httpwire.RouteOf(raw)
	s.metrics.CountRequest(route.String())
	log.Debug("GET %s", route)

	clock := fps.NewClock()
	switch route {
	case httpwire.RoutePage:
		return s.servePage(conn)
	case httpwire.RouteStream:
		return s.newStreamSession(conn, clock, log).run(ctx)
	case httpwire.RouteData:
		return s.serveData(ctx, conn, clock)
	default:
		return s.serveNotFound(conn)
	}
}

func (s *Server) servePage(w io.Writer) error {
	return write(w, httpwire.OK(httpwire.ContentHTML, s.page))
}

func (s *Server) serveNotFound(w io.Writer) error {
	return write(w, httpwire.NotFound())
}

// serveData analyzes one frame without annotating it and answers with the
// telemetry JSON. A capture failure closes the connection without a response.
func (s *Server) serveData(ctx context.Context, w io.Writer, clock *fps.Clock) error {
	clock.Tick()
	f, err := s.capture(ctx)
	if err != nil {
		return err
	}
	res := s.analyze(f, false)

	body, err := json.Marshal(types.NewTelemetry(res, clock.FPS()))
	if err != nil {
		return fmt.Errorf("encode telemetry: %w", err)
	}
	return write(w, httpwire.OK(httpwire.ContentJSON, body))
}

func write(w io.Writer, r httpwire.Response) error {
	if _, err := r.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrClientGone, err)
	}
	return nil
}

func (s *Server) capture(ctx context.Context) (*vision.Frame, error) {
	f, err := s.source.Capture(ctx)
	if err != nil {
		s.metrics.CaptureErrors.Add(1)
		return nil, fmt.Errorf("capture: %w", err)
	}
	s.metrics.FramesCaptured.Add(1)
	return f, nil
}

func (s *Server) analyze(f *vision.Frame, annotate bool) types.AnalysisResult {
	start := time.Now()
	var res types.AnalysisResult
	if annotate {
		res = s.analyzer.AnalyzeAndAnnotate(f)
	} else {
		res = s.analyzer.Analyze(f)
	}
	s.metrics.ObserveResult(res, time.Since(start))
	return res
}
