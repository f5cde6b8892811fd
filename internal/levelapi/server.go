// Package levelapi serves the level endpoints from a static directory, standing in for
// the remote level service during development.
package levelapi

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"toycar/internal/fetch"
	"toycar/internal/level"
)

// Server answers GET /api/blocks and GET /api/obstacles/excluded with the matching
// files under data/, and serves every other path as a static file.
type Server struct {
	files *fetch.FSSource
	fsys  hackpadfs.FS
	log   *zap.Logger
}

// New returns a server reading from fsys.
func New(fsys hackpadfs.FS, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{files: &fetch.FSSource{FS: fsys}, fsys: fsys, log: log.Named("levelapi")}
}

// Handler returns the gzip-wrapped mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /"+level.PlacementPath, s.serveJSON(level.PlacementFile, level.ValidatePlacements))
	mux.HandleFunc("GET /"+level.ExclusionPath, s.serveJSON(level.ExclusionFile, level.ValidateExclusions))
	mux.Handle("GET /", http.FileServerFS(s.fsys))
	return gzhttp.GzipHandler(s.logRequests(mux))
}

func (s *Server) serveJSON(name string, validate func([]byte) error) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		data, err := s.files.Fetch(r.Context(), name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				http.Error(rw, "not found", http.StatusNotFound)
				return
			}
			s.log.Error("cannot read level file", zap.String("file", name), zap.Error(err))
			http.Error(rw, "internal error", http.StatusInternalServerError)
			return
		}
		if err := validate(data); err != nil {
			s.log.Error("invalid level file", zap.String("file", name), zap.Error(err))
			http.Error(rw, "invalid level file", http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(data)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(rw, r)
		s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Duration("took", time.Since(start)))
	})
}

// ListenAndServe runs the server on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("level API listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
