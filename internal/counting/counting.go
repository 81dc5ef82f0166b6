package counting

import (
	"io"
	"net/http"
	"sync/atomic"
)

// Reader wraps an io.ReadCloser, counting bytes as they are read. Safe
// for concurrent calls to Count while a single goroutine reads.
type Reader struct {
	io.ReadCloser
	n atomic.Uint64
}

// NewReader wraps rc for live byte counting.
func NewReader(rc io.ReadCloser) *Reader {
	return &Reader{ReadCloser: rc}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.n.Add(uint64(n))
	return n, err
}

// Count returns the number of bytes read so far.
func (r *Reader) Count() uint64 { return r.n.Load() }

// ResponseWriter wraps an http.ResponseWriter, counting written bytes and
// recording the status code passed to WriteHeader (defaulting to 200 if
// WriteHeader is never called explicitly, matching net/http's own
// behavior).
type ResponseWriter struct {
	http.ResponseWriter
	n         atomic.Uint64
	status    atomic.Int64
	wroteOnce atomic.Bool
}

// NewResponseWriter wraps w for live byte counting and status capture.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	cw := &ResponseWriter{ResponseWriter: w}
	cw.status.Store(http.StatusOK)
	return cw
}

func (w *ResponseWriter) WriteHeader(status int) {
	if !w.wroteOnce.Swap(true) {
		w.status.Store(int64(status))
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(p []byte) (int, error) {
	if !w.wroteOnce.Swap(true) {
		w.status.Store(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(p)
	w.n.Add(uint64(n))
	return n, err
}

// Count returns the number of bytes written so far.
func (w *ResponseWriter) Count() uint64 { return w.n.Load() }

// Status returns the status code written so far, defaulting to 200 until
// a write or explicit WriteHeader occurs.
func (w *ResponseWriter) Status() int { return int(w.status.Load()) }
