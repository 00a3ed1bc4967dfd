package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"
)

// Config carries everything the HTTP layer needs. Both store handles are
// constructed once at process start and shared by reference across requests;
// handlers never mutate them.
type Config struct {
	Addr string // e.g. ":8080"

	DB    *sql.DB
	Store ObjectStore

	Sessions SessionConfig

	// FrontendOrigin is the single origin allowed to call the API with
	// credentials. Empty disables CORS headers entirely.
	FrontendOrigin string

	// SignedURLTTL bounds how long a presigned download link stays valid.
	SignedURLTTL time.Duration

	// MaxUploadBytes caps upload request bodies. Zero means no limit.
	MaxUploadBytes int64
}

func (cfg Config) signedURLTTL() time.Duration {
	if cfg.SignedURLTTL <= 0 {
		return time.Hour
	}
	return cfg.SignedURLTTL
}

type Server struct {
	httpServer *http.Server
}

func New(cfg Config) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", cfg.pingHandler)
	mux.HandleFunc("GET /api/healthz", cfg.healthzHandler)

	mux.Handle("POST /api/folders", cfg.createFolderHandler())
	mux.Handle("GET /api/folders", cfg.listFoldersHandler())
	mux.Handle("GET /api/folders/{id}", cfg.getFolderHandler())
	mux.Handle("DELETE /api/folders/{id}", cfg.deleteFolderHandler())
	mux.Handle("POST /api/folders/{id}/verify-password", cfg.verifyPasswordHandler())
	mux.Handle("GET /api/folders/{id}/files", cfg.listFilesHandler())
	mux.Handle("POST /api/folders/{id}/files", cfg.uploadFileHandler())

	mux.Handle("DELETE /api/files/{id}", cfg.deleteFileHandler())
	mux.Handle("GET /api/files/{id}/signed-url", cfg.signedURLHandler())

	// Wrap middleware: requestID -> logging -> cors -> headers -> mux.
	// CORS sits inside logging so preflights show up in the request log.
	var handler http.Handler = mux
	handler = securityHeadersMiddleware(handler)
	handler = corsMiddleware(cfg.FrontendOrigin)(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s}
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
