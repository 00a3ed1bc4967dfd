package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// authorizeFolder decides whether the current request may act on folder.
// Unprotected folders are always allowed. Protected folders require the
// session claim to name this exact folder; a claim for any other folder is
// as good as none. On allow the cookie is re-issued so the inactivity
// window slides.
//
// Returns false after writing the response; callers must stop.
func (cfg Config) authorizeFolder(w http.ResponseWriter, r *http.Request, folder *Folder) bool {
	if !folder.Protected {
		return true
	}

	fid, ok := cfg.Sessions.verifiedFolder(r)
	if !ok || fid != folder.ID {
		writeError(w, http.StatusUnauthorized, "password verification required")
		return false
	}

	cfg.Sessions.touch(w, folder.ID)
	return true
}

// authorizeFile applies the gate to a file's parent folder. A file whose
// parent row is gone is an orphan; the action is logged and allowed, since
// blocking it would make orphan cleanup impossible.
func (cfg Config) authorizeFile(w http.ResponseWriter, r *http.Request, file *FileMeta) bool {
	folder, err := getFolder(r.Context(), cfg.DB, file.FolderID)
	if errors.Is(err, errNotFound) {
		log.Printf("rid=%s msg=orphaned_file file_id=%d folder_id=%d",
			RequestIDFromContext(r.Context()), file.ID, file.FolderID)
		return true
	}
	if err != nil {
		log.Printf("rid=%s msg=folder_lookup_failed folder_id=%d err=%v",
			RequestIDFromContext(r.Context()), file.FolderID, err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return false
	}

	return cfg.authorizeFolder(w, r, folder)
}
