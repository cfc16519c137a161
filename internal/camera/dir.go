package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/dj-oyu/plant-monitor/internal/logger"
	"github.com/dj-oyu/plant-monitor/internal/vision"
)

var stillExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// DirSource plays back still images from a directory in name order, looping
// forever. Each still is decoded once, scaled to the frame size and cached.
type DirSource struct {
	mu     sync.Mutex
	files  []string
	frames map[int]*image.RGBA
	width  int
	height int
	next   int
	seq    uint64
	pace   pacer
}

// NewDirSource lists dir. It fails with ErrNoFrames when no supported image is
// present.
func NewDirSource(dir string, width, height int, interval time.Duration) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !stillExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	sort.Strings(files)

	logger.Info("Camera", "Playing %d stills from %s at %dx%d", len(files), dir, width, height)
	return &DirSource{
		files:  files,
		frames: make(map[int]*image.RGBA, len(files)),
		width:  width,
		height: height,
		pace:   pacer{interval: interval},
	}, nil
}

// Len returns the number of stills in the playlist.
func (d *DirSource) Len() int { return len(d.files) }

func (d *DirSource) Capture(ctx context.Context) (*vision.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.pace.wait(ctx); err != nil {
		return nil, err
	}

	idx := d.next
	d.next = (d.next + 1) % len(d.files)

	img, err := d.load(idx)
	if err != nil {
		return nil, err
	}
	d.seq++

	f := vision.NewFrame(img)
	f.Seq = d.seq
	return f.Clone(), nil
}

func (d *DirSource) load(idx int) (*image.RGBA, error) {
	if img, ok := d.frames[idx]; ok {
		return img, nil
	}

	path := d.files[idx]
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open still: %w", err)
	}
	defer fh.Close()

	src, format, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	logger.Debug("Camera", "Decoded %s (%s %dx%d)", filepath.Base(path), format, src.Bounds().Dx(), src.Bounds().Dy())

	d.frames[idx] = dst
	return dst, nil
}
