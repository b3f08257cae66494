package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder names a Content-Encoding and builds its writer.
type encoder struct {
	name      string
	newWriter func(io.Writer) (io.WriteCloser, error)
}

// encoders in server preference order.
var encoders = []encoder{
	{"zstd", func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	}},
	{"br", func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	}},
	{"gzip", func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	}},
}

// Compress encodes responses with the best encoding the client accepts:
// zstd, then brotli, then gzip.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")

		enc, ok := negotiate(r.Header.Get("Accept-Encoding"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		cw, err := enc.newWriter(w)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		defer cw.Close()

		w.Header().Set("Content-Encoding", enc.name)
		next.ServeHTTP(&compressResponseWriter{ResponseWriter: w, writer: cw}, r)
	})
}

// negotiate picks an encoder from an Accept-Encoding header. Encodings with
// q=0 are refused; "*" accepts any.
func negotiate(header string) (encoder, bool) {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		accepted[name] = qualityOf(params) > 0
	}

	for _, enc := range encoders {
		if ok, listed := accepted[enc.name]; listed {
			if ok {
				return enc, true
			}
			continue
		}
		if accepted["*"] {
			return enc, true
		}
	}
	return encoder{}, false
}

func qualityOf(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found || strings.TrimSpace(key) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return q
	}
	return 1
}

type compressResponseWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (c *compressResponseWriter) WriteHeader(status int) {
	c.Header().Del("Content-Length")
	c.ResponseWriter.WriteHeader(status)
}

func (c *compressResponseWriter) Write(p []byte) (int, error) {
	c.Header().Del("Content-Length")
	return c.writer.Write(p)
}

func (c *compressResponseWriter) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
