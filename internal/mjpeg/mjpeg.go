// Package mjpeg encodes frames to JPEG and writes them as multipart parts
// delimited by the "frame" boundary.
package mjpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net"
	"strconv"
)

// Boundary is the multipart boundary token.
const Boundary = "frame"

// ContentType is the response content type for an MJPEG stream.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// DefaultQuality is the JPEG quality used for streamed frames.
const DefaultQuality = 70

// Encoder compresses an image to JPEG bytes.
type Encoder interface {
	Encode(img image.Image, quality int) ([]byte, error)
}

// JPEGEncoder encodes with image/jpeg and reuses its buffer between calls.
// It is not safe for concurrent use.
type JPEGEncoder struct {
	buf bytes.Buffer
}

func NewJPEGEncoder() *JPEGEncoder {
	return &JPEGEncoder{}
}

// Encode returns a copy of the encoded bytes.
func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out, nil
}

// PartHeader returns the delimiter and headers preceding a JPEG part of n bytes.
func PartHeader(n int) []byte {
	h := make([]byte, 0, 96)
	h = append(h, "\r\n--"+Boundary+"\r\n"...)
	h = append(h, "Content-Type: image/jpeg\r\n"...)
	h = append(h, "Content-Length: "...)
	h = strconv.AppendInt(h, int64(n), 10)
	h = append(h, "\r\n\r\n"...)
	return h
}

// PartWriter writes parts to an underlying connection.
type PartWriter struct {
	w      io.Writer
	frames uint64
}

func NewPartWriter(w io.Writer) *PartWriter {
	return &PartWriter{w: w}
}

// WritePart writes one delimiter, header block and JPEG payload. The header
// and payload are handed to the writer together so a net.Conn can send them
// with a single vectored write.
func (p *PartWriter) WritePart(jpegData []byte) error {
	bufs := net.Buffers{PartHeader(len(jpegData)), jpegData}
	if _, err := bufs.WriteTo(p.w); err != nil {
		return err
	}
	p.frames++
	return nil
}

// Frames returns the number of parts written successfully.
func (p *PartWriter) Frames() uint64 { return p.frames }
