// Package server runs the plant monitor's single-threaded HTTP loop: one
// client is accepted, served to completion and closed before the next.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dj-oyu/plant-monitor/internal/analyzer"
	"github.com/dj-oyu/plant-monitor/internal/camera"
	"github.com/dj-oyu/plant-monitor/internal/config"
	"github.com/dj-oyu/plant-monitor/internal/logger"
	"github.com/dj-oyu/plant-monitor/internal/metrics"
	"github.com/dj-oyu/plant-monitor/internal/mjpeg"
	"github.com/dj-oyu/plant-monitor/internal/network"
	"github.com/dj-oyu/plant-monitor/internal/vision"
)

// Deps are the collaborators a Server drives. Nil fields get defaults.
type Deps struct {
	Source   camera.Source
	Analyzer *analyzer.Analyzer
	Encoder  mjpeg.Encoder
	Link     network.Link
	Metrics  *metrics.Metrics
}

// Server owns the listening socket and serves one client at a time.
type Server struct {
	cfg      config.Config
	source   camera.Source
	analyzer *analyzer.Analyzer
	encoder  mjpeg.Encoder
	link     network.Link
	metrics  *metrics.Metrics
	page     []byte
	log      *logger.Scope

	listen func(ctx context.Context, addr string) (net.Listener, error)
}

// New returns a configured server.
func New(cfg config.Config, d Deps) *Server {
	if d.Source == nil {
		d.Source = camera.NewSyntheticSource(cfg.Source.Width, cfg.Source.Height, cfg.Source.Interval)
	}
	if d.Analyzer == nil {
		d.Analyzer = analyzer.New(vision.NewLabDetector(), cfg.Classes)
	}
	if d.Encoder == nil {
		d.Encoder = mjpeg.NewJPEGEncoder()
	}
	if d.Link == nil {
		d.Link = network.HostLink{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = mjpeg.DefaultQuality
	}

	return &Server{
		cfg:      cfg,
		source:   d.Source,
		analyzer: d.Analyzer,
		encoder:  d.Encoder,
		link:     d.Link,
		metrics:  d.Metrics,
		page:     renderPage(cfg.DataPollInterval),
		log:      logger.For("Server"),
		listen: func(ctx context.Context, addr string) (net.Listener, error) {
			var lc net.ListenConfig
			return lc.Listen(ctx, "tcp", addr)
		},
	}
}

// Metrics returns the server's counters.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// Run is the outer loop: associate the link, bind, serve, and on a socket
// error close the listener and rebind after RebindDelay. It returns nil once
// ctx is cancelled and never returns otherwise.
func (s *Server) Run(ctx context.Context) error {
	opts := s.cfg.WiFi.Options()
	opts.OnAttempt = func(int) { s.metrics.WiFiAttempts.Add(1) }

	for ctx.Err() == nil {
		if err := network.Connect(ctx, s.link, opts); err != nil {
			break
		}

		ln, err := s.listen(ctx, s.cfg.Addr)
		if err != nil {
			s.log.Error("Socket error: %v", err)
			s.rebindPause(ctx)
			continue
		}
		s.logStarted(ln)

		err = s.Serve(ctx, ln)
		_ = ln.Close()
		if ctx.Err() != nil {
			break
		}
		s.log.Error("Socket error: %v", err)
		s.rebindPause(ctx)
	}

	s.log.Info("Server stopped")
	return nil
}

func (s *Server) rebindPause(ctx context.Context) {
	s.metrics.ListenerRebinds.Add(1)
	t := time.NewTimer(s.cfg.RebindDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Server) logStarted(ln net.Listener) {
	host := "0.0.0.0"
	if ip, err := s.link.Addr(); err == nil {
		host = ip.String()
	}
	port := ""
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
	} else {
		_, port, _ = net.SplitHostPort(ln.Addr().String())
	}
	s.log.Info("Server started at http://%s", net.JoinHostPort(host, port))
}

// Serve is the accept loop. Each connection is handled synchronously. It
// returns ctx.Err() after cancellation, or the accept error otherwise.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.metrics.AcceptErrors.Add(1)
			return fmt.Errorf("accept: %w", err)
		}
		s.handleConn(ctx, conn)
	}
}

// handleConn serves one client and always closes the connection. Handler
// errors and panics stop here.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	log := s.log.Sub("#" + uuid.NewString()[:8])
	s.metrics.ClientsServed.Add(1)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.metrics.HandlerPanics.Add(1)
			log.Error("Client handling error: %v", r)
		}
	}()

	log.Info("Connected to %s", conn.RemoteAddr())
	err := s.route(ctx, conn, log)
	switch {
	case err == nil:
	case errors.Is(err, ErrClientGone), errors.Is(err, context.Canceled):
		log.Info("Closed: %v", err)
	default:
		log.Warn("Client handling error: %v", err)
	}
}
