// Package httpwire implements the small slice of HTTP/1.1 the plant monitor
// speaks over raw sockets: one request line in, one response envelope out.
package httpwire

import (
	"bytes"
	"io"
	"strings"
)

// MaxRequestSize is the number of bytes read from a new connection. Anything
// past it, headers included, is ignored.
const MaxRequestSize = 1024

// Request holds the tokens of the request line. Headers are never parsed.
type Request struct {
	Method string
	Path   string
	Proto  string
}

// ReadRequest performs a single read of up to MaxRequestSize bytes.
func ReadRequest(r io.Reader) ([]byte, error) {
	buf := make([]byte, MaxRequestSize)
	n, err := r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

// ParseRequest splits the first line of raw on single spaces. ok is false when
// the line has no second token.
func ParseRequest(raw []byte) (req Request, ok bool) {
	line := raw
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})

	parts := strings.Split(string(line), " ")
	if len(parts) < 2 {
		return Request{}, false
	}
	req.Method = parts[0]
	req.Path = parts[1]
	if len(parts) > 2 {
		req.Proto = parts[2]
	}
	return req, true
}
