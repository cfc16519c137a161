package vision

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation colours for the three classes.
var (
	ColorPlant  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	ColorYellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	ColorFruit  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// DrawRectangle draws a 1px outline of r, clipped to the frame.
func (f *Frame) DrawRectangle(r image.Rectangle, c color.RGBA) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	img := f.Image
	b := img.Bounds()

	for x := r.Min.X; x < r.Max.X; x++ {
		setIn(img, b, x, r.Min.Y, c)
		setIn(img, b, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setIn(img, b, r.Min.X, y, c)
		setIn(img, b, r.Max.X-1, y, c)
	}
}

func setIn(img *image.RGBA, b image.Rectangle, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(b) {
		img.SetRGBA(x, y, c)
	}
}

// DrawCaption writes text on a filled background box whose top-left corner is (x, y).
func (f *Frame) DrawCaption(x, y int, text string, fg, bg color.RGBA) {
	const pad = 2
	face := basicfont.Face7x13

	width := font.MeasureString(face, text).Ceil()
	box := image.Rect(x, y, x+width+2*pad, y+face.Height+2*pad).Intersect(f.Bounds())
	if box.Empty() {
		return
	}
	xdraw.Draw(f.Image, box, image.NewUniform(bg), image.Point{}, xdraw.Src)

	d := font.Drawer{
		Dst:  f.Image,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x+pad, y+pad+face.Ascent),
	}
	d.DrawString(text)
}
