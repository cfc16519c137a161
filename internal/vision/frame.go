package vision

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
)

// Frame is one captured colour image. Analysis reads it; annotation draws on it in place.
type Frame struct {
	Image      *image.RGBA
	Seq        uint64
	CapturedAt time.Time
}

// NewFrame wraps an RGBA image.
func NewFrame(img *image.RGBA) *Frame {
	return &Frame{Image: img, CapturedAt: time.Now()}
}

// FromImage copies any image into a new RGBA-backed frame.
func FromImage(src image.Image) *Frame {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return NewFrame(dst)
}

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

// Clone returns a deep copy, so annotation on the copy leaves f untouched.
func (f *Frame) Clone() *Frame {
	img := image.NewRGBA(f.Image.Rect)
	copy(img.Pix, f.Image.Pix)
	return &Frame{Image: img, Seq: f.Seq, CapturedAt: f.CapturedAt}
}

// LabAt returns the L*a*b* value of the pixel at (x, y).
func (f *Frame) LabAt(x, y int) (l, a, b float64) {
	i := f.Image.PixOffset(x, y)
	p := f.Image.Pix[i : i+3 : i+3]
	v := labLookup(p[0], p[1], p[2])
	return float64(v.l), float64(v.a), float64(v.b)
}

type labValue struct {
	l, a, b float32
}

// Sensor frames are RGB565; colour classification runs on that precision through
// a 64K-entry table, the same trade the camera firmware makes.
var (
	labTableOnce sync.Once
	labTable     []labValue
)

func buildLabTable() {
	labTable = make([]labValue, 1<<16)
	for i := range labTable {
		r, g, b := expand565(uint16(i))
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		l, a, bb := c.Lab()
		labTable[i] = labValue{l: float32(l * 100), a: float32(a * 100), b: float32(bb * 100)}
	}
}

func labLookup(r, g, b uint8) labValue {
	labTableOnce.Do(buildLabTable)
	return labTable[pack565(r, g, b)]
}

func pack565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func expand565(v uint16) (r, g, b uint8) {
	r5 := uint8(v >> 11 & 0x1f)
	g6 := uint8(v >> 5 & 0x3f)
	b5 := uint8(v & 0x1f)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Lab converts an arbitrary colour with the same table the detectors use.
func Lab(c color.Color) (l, a, b float64) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	v := labLookup(rgba.R, rgba.G, rgba.B)
	return float64(v.l), float64(v.a), float64(v.b)
}
