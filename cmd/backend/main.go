package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"folder-vault/internal/db"
	"folder-vault/internal/server"
)

func main() {
	// Local development keeps its settings in a .env file; a missing file
	// is the normal case in deployed environments.
	_ = godotenv.Load()

	addr := getenvDefault("FV_ADDR", ":8080")

	sessions := server.SessionConfig{
		Secret:     os.Getenv("FV_SESSION_SECRET"),
		TTL:        time.Duration(getenvInt("FV_SESSION_MINUTES", 10)) * time.Minute,
		CookieName: "fv_session",
		Insecure:   os.Getenv("FV_COOKIE_INSECURE") == "true",
	}

	// Safety: refuse to start if the cookie signing secret is missing.
	if sessions.Secret == "" {
		log.Printf("service=backend msg=%q", "missing FV_SESSION_SECRET")
		os.Exit(1)
	}

	// Database
	dbConn, err := server.OpenDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	log.Printf("service=backend msg=%q", "running_migrations")
	if err := db.RunMigrations(dbConn); err != nil {
		log.Printf("service=backend msg=%q err=%v", "migration_failed", err)
		os.Exit(1)
	}
	log.Printf("service=backend msg=%q", "migrations_complete")

	// Object storage
	store, err := server.NewMinioStore(
		os.Getenv("FV_S3_ENDPOINT"),
		os.Getenv("FV_S3_ACCESS_KEY"),
		os.Getenv("FV_S3_SECRET_KEY"),
		os.Getenv("FV_BUCKET"),
	)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "object_storage_failed", err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Addr:           addr,
		DB:             dbConn,
		Store:          store,
		Sessions:       sessions,
		FrontendOrigin: getenvDefault("FV_FRONTEND_ORIGIN", "http://localhost:5173"),
		SignedURLTTL:   time.Duration(getenvInt("FV_SIGNED_URL_TTL_SECONDS", 3600)) * time.Second,
		MaxUploadBytes: int64(getenvInt("FV_MAX_UPLOAD_BYTES", 0)),
	})

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s", "starting", addr)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// getenvInt reads an integer environment variable; unset or unparsable
// values fall back to the default.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("service=backend msg=%q key=%s value=%q", "bad_int_env", key, v)
		return def
	}
	return n
}
