package server

import (
	"bufio"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"net"
	"net/http"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/dj-oyu/plant-monitor/internal/analyzer"
	"github.com/dj-oyu/plant-monitor/internal/config"
	"github.com/dj-oyu/plant-monitor/internal/vision"
)

const requestTimeout = 5 * time.Second

var (
	leafGreen  = color.RGBA{R: 60, G: 160, B: 60, A: 255}
	leafYellow = color.RGBA{R: 220, G: 180, B: 65, A: 255}
	soil       = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// scene paints rectangles onto a soil-coloured 80x60 frame.
func scene(patches map[image.Rectangle]color.RGBA) *vision.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	fillRect(img, img.Bounds(), soil)
	for r, c := range patches {
		fillRect(img, r, c)
	}
	return vision.NewFrame(img)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// staticSource returns a copy of the same frame on every capture, or the frame
// itself when shared is set. failAt makes the n-th capture (1-based) fail;
// panicAt makes it panic.
type staticSource struct {
	mu      sync.Mutex
	frame   *vision.Frame
	shared  bool
	calls   int
	failAt  int
	panicAt int
}

func (s *staticSource) Capture(context.Context) (*vision.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls == s.panicAt {
		panic("sensor fault")
	}
	if s.calls == s.failAt {
		return nil, errors.New("sensor timeout")
	}
	if s.shared {
		return s.frame, nil
	}
	return s.frame.Clone(), nil
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.RebindDelay = time.Millisecond
	cfg.WiFi.MaxAttempts = 1
	cfg.WiFi.AttemptInterval = time.Millisecond
	return cfg
}

func newTestServer(t *testing.T, src *staticSource) *Server {
	t.Helper()
	return New(testConfig(), Deps{Source: src})
}

// startServer runs Serve on a loopback listener and returns its base URL.
func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return "http://" + ln.Addr().String()
}

func httpClient() *http.Client {
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := httpClient().Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp, body
}

// rawExchange writes request verbatim and returns everything the server sends
// before closing the connection.
func rawExchange(t *testing.T, addr, request string) []byte {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, requestTimeout)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	if _, err := io.WriteString(conn, request); err != nil {
		t.Fatalf("write request: %v", err)
	}
	out, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil && !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("read response: %v", err)
	}
	return out
}

// keyedDetector returns canned blobs per threshold, standing in for the
// segmentation stage.
type keyedDetector map[vision.ColorThreshold][]vision.Blob

func (k keyedDetector) FindBlobs(_ *vision.Frame, t vision.ColorThreshold, _, _ int) []vision.Blob {
	return k[t]
}

func blob(x, w, h int) vision.Blob {
	return vision.Blob{Rect: image.Rect(x, 0, x+w, h), Pixels: w * h}
}

func stubAnalyzer(green, yellow, red []vision.Blob) *analyzer.Analyzer {
	classes := analyzer.DefaultClasses()
	return analyzer.New(keyedDetector{
		classes.Green.Threshold:  green,
		classes.Yellow.Threshold: yellow,
		classes.Red.Threshold:    red,
	}, classes)
}
