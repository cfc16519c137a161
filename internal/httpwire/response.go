package httpwire

import (
	"io"
	"strconv"

	"github.com/dj-oyu/plant-monitor/internal/mjpeg"
)

// Content types served by the monitor.
const (
	ContentHTML = "text/html"
	ContentJSON = "application/json"
	ContentText = "text/plain"
)

// Header is one response header line. Order is preserved on the wire.
type Header struct {
	Name  string
	Value string
}

// Response is a complete response envelope.
type Response struct {
	StatusCode int
	Header     []Header
	Body       []byte
}

var statusText = map[int]string{
	200: "OK",
	404: "Not Found",
}

// StatusLine returns e.g. "HTTP/1.1 404 Not Found".
func StatusLine(code int) string {
	text, ok := statusText[code]
	if !ok {
		text = "Status"
	}
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + text
}

// Bytes renders the status line, headers, blank line and body.
func (r Response) Bytes() []byte {
	out := make([]byte, 0, 128+len(r.Body))
	out = append(out, StatusLine(r.StatusCode)...)
	out = append(out, "\r\n"...)
	for _, h := range r.Header {
		out = append(out, h.Name...)
		out = append(out, ": "...)
		out = append(out, h.Value...)
		out = append(out, "\r\n"...)
	}
	out = append(out, "\r\n"...)
	out = append(out, r.Body...)
	return out
}

// WriteTo writes the rendered response in one call.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// OK builds a 200 response with a fixed-length body.
func OK(contentType string, body []byte) Response {
	return withBody(200, contentType, body)
}

// NotFound is the only error response the monitor sends.
func NotFound() Response {
	return withBody(404, ContentText, []byte("404 Not Found"))
}

func withBody(code int, contentType string, body []byte) Response {
	return Response{
		StatusCode: code,
		Header: []Header{
			{"Content-Type", contentType},
			{"Content-Length", strconv.Itoa(len(body))},
			{"Connection", "close"},
		},
		Body: body,
	}
}

// StreamHead is the header block that opens an MJPEG stream. It has no body;
// parts follow it on the same connection.
func StreamHead() Response {
	return Response{
		StatusCode: 200,
		Header: []Header{
			{"Content-Type", mjpeg.ContentType},
			{"Cache-Control", "no-cache"},
			{"Pragma", "no-cache"},
			{"Connection", "close"},
		},
	}
}
