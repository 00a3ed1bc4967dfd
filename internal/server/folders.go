// folders.go - Folder CRUD, password verification and deletion.
//
// Folder deletion is the one piece of real coordination in this service:
// blobs live in the object store, metadata in Postgres, and there is no
// transaction spanning both. Blobs are removed first, and any storage
// failure aborts the delete before the folder row is touched - a folder
// that can be retried beats blobs stranded with no rows pointing at them.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type createFolderReq struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

func (cfg Config) createFolderHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createFolderReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be JSON")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "folder name is required")
			return
		}

		var passwordHash *string
		if req.Password != "" {
			h, err := hashPassword(req.Password)
			if err != nil {
				log.Printf("rid=%s msg=hash_failed err=%v", RequestIDFromContext(r.Context()), err)
				writeError(w, http.StatusInternalServerError, "failed to process password")
				return
			}
			passwordHash = &h
		}

		folder, err := createFolder(r.Context(), cfg.DB, req.Name, passwordHash)
		if err != nil {
			if errors.Is(err, errDuplicateName) {
				writeError(w, http.StatusConflict, fmt.Sprintf("folder name %q already exists", req.Name))
				return
			}
			log.Printf("rid=%s msg=create_folder_failed err=%v", RequestIDFromContext(r.Context()), err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		writeJSON(w, http.StatusCreated, folder)
	})
}

func (cfg Config) listFoldersHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		folders, err := listFolders(r.Context(), cfg.DB)
		if err != nil {
			log.Printf("rid=%s msg=list_folders_failed err=%v", RequestIDFromContext(r.Context()), err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, folders)
	})
}

func (cfg Config) getFolderHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}

		folder, err := getFolder(r.Context(), cfg.DB, id)
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}
		if err != nil {
			log.Printf("rid=%s msg=get_folder_failed folder_id=%d err=%v", RequestIDFromContext(r.Context()), id, err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, folder)
	})
}

// verifyPasswordHandler checks a candidate password and, on success, issues
// the session claim for this folder. A missing folder and a wrong password
// are indistinguishable to the client; only a backing-store failure is
// reported differently, so an outage never reads as "wrong password".
func (cfg Config) verifyPasswordHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}

		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be JSON")
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}

		hash, ok, err := folderPasswordHash(r.Context(), cfg.DB, id)
		if err != nil {
			log.Printf("rid=%s msg=verify_lookup_failed folder_id=%d err=%v", RequestIDFromContext(r.Context()), id, err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		if !ok || !verifyPassword(req.Password, hash) {
			writeError(w, http.StatusForbidden, "incorrect password")
			return
		}

		if err := cfg.Sessions.issue(w, id); err != nil {
			log.Printf("rid=%s msg=session_issue_failed err=%v", RequestIDFromContext(r.Context()), err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password verified"})
	})
}

func (cfg Config) deleteFolderHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}
		rid := RequestIDFromContext(r.Context())

		folder, err := getFolder(r.Context(), cfg.DB, id)
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "folder not found")
			return
		}
		if err != nil {
			log.Printf("rid=%s msg=get_folder_failed folder_id=%d err=%v", rid, id, err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		if folder.Protected {
			var req struct {
				Password string `json:"password"`
			}
			// Body may legitimately be absent for unprotected folders, so
			// decode errors only matter once we know one is required.
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
				writeError(w, http.StatusBadRequest, "password required to delete this folder")
				return
			}

			hash, ok, err := folderPasswordHash(r.Context(), cfg.DB, id)
			if err != nil {
				log.Printf("rid=%s msg=verify_lookup_failed folder_id=%d err=%v", rid, id, err)
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
			if !ok || !verifyPassword(req.Password, hash) {
				writeError(w, http.StatusForbidden, "incorrect password")
				return
			}
		}

		if err := deleteFolderAndContents(r.Context(), cfg.DB, cfg.Store, id); err != nil {
			log.Printf("rid=%s msg=delete_folder_failed folder_id=%d err=%v", rid, id, err)
			writeError(w, http.StatusServiceUnavailable, "folder deletion failed")
			return
		}

		// The claim names a folder that no longer exists; drop it.
		if fid, ok := cfg.Sessions.verifiedFolder(r); ok && fid == id {
			cfg.Sessions.clear(w)
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// deleteFolderAndContents removes every blob belonging to the folder, then
// the folder row. The ordering is deliberate: if the bulk blob delete fails,
// the folder row stays so the whole operation can be retried; deleting the
// row first would strand unreachable blobs with no metadata to find them by.
// Re-running after a partial blob delete is fine - RemoveMany treats
// already-gone keys as no-ops.
func deleteFolderAndContents(ctx context.Context, db *sql.DB, store ObjectStore, folderID int64) error {
	files, err := listFiles(ctx, db, folderID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if f.StoragePath != "" {
			paths = append(paths, f.StoragePath)
		}
	}
	if len(paths) > 0 {
		if err := store.RemoveMany(ctx, paths); err != nil {
			return fmt.Errorf("remove blobs: %w", err)
		}
	}

	if err := deleteFolderRow(ctx, db, folderID); err != nil {
		return fmt.Errorf("delete folder row: %w", err)
	}
	return nil
}
