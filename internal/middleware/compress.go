package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	acceptEncodingHeader  = "Accept-Encoding"
	contentEncodingHeader = "Content-Encoding"
	contentLengthHeader   = "Content-Length"
	varyHeader            = "Vary"
	gzipEncoding          = "gzip"
	invalidGzipBody       = "invalid gzip body"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Del(contentLengthHeader)
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	const op = "write compressed"

	n, err := w.gz.Write(p)
	if err != nil {
		return n, errors.Wrap(err, op)
	}

	return n, nil
}

type gzipRequestReader struct {
	body io.ReadCloser
	gz   *gzip.Reader
}

func newGzipRequestReader(body io.ReadCloser) (*gzipRequestReader, error) {
	const op = "create gzip reader"

	gz, err := gzip.NewReader(body)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &gzipRequestReader{body: body, gz: gz}, nil
}

func (g *gzipRequestReader) Read(p []byte) (int, error) {
	n, err := g.gz.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}

	return n, errors.Wrap(err, "read compressed")
}

func (g *gzipRequestReader) Close() error {
	const op = "close gzip reader"

	gzErr := g.gz.Close()
	if err := g.body.Close(); err != nil {
		return errors.Wrap(err, op)
	}

	return errors.Wrap(gzErr, op)
}

// ResponseEncoder сжимает тело ответа, если клиент принимает gzip.
func ResponseEncoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(varyHeader, acceptEncodingHeader)

		if !strings.Contains(r.Header.Get(acceptEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		gz, ok := gzipWriterPool.Get().(*gzip.Writer)
		if !ok {
			h.ServeHTTP(w, r)
			return
		}
		defer gzipWriterPool.Put(gz)

		w.Header().Set(contentEncodingHeader, gzipEncoding)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
		}()

		h.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gz: gz}, r)
	})
}

// RequestDecoder распаковывает тело запроса, сжатое gzip. Повреждённое тело отклоняется с кодом 400.
func RequestDecoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get(contentEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		reader, err := newGzipRequestReader(r.Body)
		if err != nil {
			http.Error(w, invalidGzipBody, http.StatusBadRequest)
			return
		}
		defer func() {
			_ = reader.Close()
		}()

		r.Body = reader
		r.Header.Del(contentEncodingHeader)
		r.Header.Del(contentLengthHeader)
		r.ContentLength = -1

		h.ServeHTTP(w, r)
	})
}
