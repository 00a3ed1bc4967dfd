package server

import "testing"

func TestOpenDB_EmptyDSN(t *testing.T) {
	if _, err := OpenDB(""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
