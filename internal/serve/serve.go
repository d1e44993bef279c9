// Package serve exposes the entries of one archive over HTTP.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nguyengg/zipentry/internal/load"
	"github.com/nguyengg/zipentry/zip/lfh"
)

// ErrEntryTooLarge is returned for entries whose declared uncompressed size exceeds Server.MaxEntrySize.
var ErrEntryTooLarge = errors.New("entry exceeds maximum size")

// Server serves the entries of Archive.
//
// Every request opens its own handle to Archive because the lfh cursor has a single owner.
type Server struct {
	// Archive is the local path or S3 URI of the archive.
	Archive string
	// MaxEntrySize caps the declared uncompressed size of an entry that will be extracted.
	//
	// The output buffer is allocated from the size in the local file header before any decompression happens, so a
	// crafted header can ask for up to 4 GiB per request. Entries above the cap are rejected with 422 without
	// reading their payload. Zero or negative means no cap.
	MaxEntrySize int64
	// Options are passed to load.Open for every request.
	Options []func(*load.Options)
	// Logger receives one line per request. Defaults to log.Default.
	Logger *log.Logger
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	r.GET("/entries", s.list)
	r.GET("/entries/*name", s.get)
	return r
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	}
}

func (s *Server) list(c *gin.Context) {
	a, err := load.Open(c.Request.Context(), s.Archive, s.Options...)
	if err != nil {
		abort(c, err)
		return
	}
	defer a.Close()

	names, err := lfh.Names(a.File())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"archive": s.Archive, "entries": names})
}

func (s *Server) get(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "entry name is required"})
		return
	}

	a, err := load.Open(c.Request.Context(), s.Archive, s.Options...)
	if err != nil {
		abort(c, err)
		return
	}
	defer a.Close()

	f, err := lfh.FindLocalFile(a.File(), name)
	if err != nil {
		abort(c, err)
		return
	}

	h := f.Header()
	if s.MaxEntrySize > 0 && int64(h.UncompressedSize) > s.MaxEntrySize {
		abort(c, fmt.Errorf("%w: %q declares %d bytes, limit is %d", ErrEntryTooLarge, name, h.UncompressedSize, s.MaxEntrySize))
		return
	}

	_, data, err := f.ExtractUncompressed()
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Last-Modified", h.Modified().UTC().Format(http.TimeFormat))
	c.Header("X-Compression-Method", strconv.Itoa(int(h.CompressionMethod)))
	c.Header("X-Compressed-Size", strconv.FormatUint(uint64(h.CompressedSize), 10))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// StatusCode maps errors from lfh to HTTP status codes.
//
// A missing entry is 404, a malformed archive or payload (or an entry above the size cap) is 422, and everything else
// (including failing to open the archive) is 500.
func StatusCode(err error) int {
	if errors.Is(err, ErrEntryTooLarge) {
		return http.StatusUnprocessableEntity
	}

	kind, ok := lfh.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case lfh.KindEntryNotFound:
		return http.StatusNotFound
	case lfh.KindIO:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func abort(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if kind, ok := lfh.KindOf(err); ok {
		body["kind"] = kind.String()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusCode(err), body)
}
