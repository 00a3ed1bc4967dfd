// Package server implements the HTTP server and handlers for the folder
// vault backend. It wires together the HTTP routes, dependencies (database,
// MinIO client, session signing), and provides lifecycle helpers used by
// tests and the production binary.
package server
