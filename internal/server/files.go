// files.go - File listing, upload, deletion and signed URL issuance.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func (cfg Config) listFilesHandler() http.Handler {
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
		if !cfg.authorizeFolder(w, r, folder) {
			return
		}

		files, err := listFiles(r.Context(), cfg.DB, id)
		if err != nil {
			log.Printf("rid=%s msg=list_files_failed folder_id=%d err=%v", RequestIDFromContext(r.Context()), id, err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, files)
	})
}

func (cfg Config) uploadFileHandler() http.Handler {
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
		if !cfg.authorizeFolder(w, r, folder) {
			return
		}

		if cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file part in the request")
			return
		}

		var filePart io.Reader
		var filename, contentType string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad multipart body")
				return
			}
			defer func() { _ = part.Close() }()

			if part.FormName() != "file" {
				continue
			}

			filePart = part
			filename = part.FileName()
			contentType = part.Header.Get("Content-Type")
			break
		}

		if filePart == nil {
			writeError(w, http.StatusBadRequest, "no file part in the request")
			return
		}
		if strings.TrimSpace(filename) == "" {
			writeError(w, http.StatusBadRequest, "no file selected")
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		meta, err := cfg.uploadFile(r.Context(), id, filename, contentType, filePart)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			log.Printf("rid=%s msg=upload_failed folder_id=%d err=%v", rid, id, err)
			writeError(w, http.StatusServiceUnavailable, "upload failed")
			return
		}

		writeJSON(w, http.StatusCreated, meta)
	})
}

// uploadFile coordinates the two writes behind an upload. The blob goes in
// first and the metadata row second: a crash in between leaves an orphaned
// blob, which is cheap and sweepable, whereas a row pointing at a missing
// blob would break every later read of that file. A failed insert triggers
// a best-effort removal of the blob just written.
func (cfg Config) uploadFile(ctx context.Context, folderID int64, filename, contentType string, body io.Reader) (*FileMeta, error) {
	name := sanitizeFilename(filename)

	// The storage key is server-generated: user names never reach the
	// object store, and the uuid rules out collisions within the folder.
	key := fmt.Sprintf("%d/%s%s", folderID, uuid.New().String(), strings.ToLower(filepath.Ext(name)))

	// Full read for an exact byte count; uploads are bounded media assets.
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if err := cfg.Store.Put(ctx, key, data, contentType); err != nil {
		// No row exists yet, so there is no partial state to unwind.
		return nil, fmt.Errorf("storage upload: %w", err)
	}

	meta := &FileMeta{
		Name:        name,
		FolderID:    folderID,
		StoragePath: key,
		MimeType:    contentType,
		Size:        int64(len(data)),
	}
	if err := insertFile(ctx, cfg.DB, meta); err != nil {
		if rmErr := cfg.Store.RemoveMany(ctx, []string{key}); rmErr != nil {
			log.Printf("msg=orphaned_blob key=%s insert_err=%v cleanup_err=%v", key, err, rmErr)
			return nil, fmt.Errorf("save metadata, cleanup failed, orphaned blob at %s: %w", key, err)
		}
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	return meta, nil
}

// deleteFileHandler removes one file: blob first, row second, mirroring the
// ordering rationale of uploads.
func (cfg Config) deleteFileHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, ok := cfg.fetchFile(w, r)
		if !ok {
			return
		}
		if !cfg.authorizeFile(w, r, file) {
			return
		}
		rid := RequestIDFromContext(r.Context())

		if err := cfg.Store.RemoveMany(r.Context(), []string{file.StoragePath}); err != nil {
			log.Printf("rid=%s msg=blob_delete_failed key=%s err=%v", rid, file.StoragePath, err)
			writeError(w, http.StatusServiceUnavailable, "storage deletion failed")
			return
		}
		if err := deleteFileRow(r.Context(), cfg.DB, file.ID); err != nil {
			log.Printf("rid=%s msg=row_delete_failed file_id=%d err=%v", rid, file.ID, err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func (cfg Config) signedURLHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, ok := cfg.fetchFile(w, r)
		if !ok {
			return
		}
		if !cfg.authorizeFile(w, r, file) {
			return
		}

		signedURL, err := cfg.Store.SignedURL(r.Context(), file.StoragePath, cfg.signedURLTTL())
		if err != nil {
			log.Printf("rid=%s msg=presign_failed key=%s err=%v", RequestIDFromContext(r.Context()), file.StoragePath, err)
			writeError(w, http.StatusServiceUnavailable, "could not generate signed url")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"signedUrl": signedURL})
	})
}

// fetchFile loads the file row for {id} and handles the shared error cases.
// Returns ok=false after writing the response.
func (cfg Config) fetchFile(w http.ResponseWriter, r *http.Request) (*FileMeta, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return nil, false
	}

	file, err := getFile(r.Context(), cfg.DB, id)
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return nil, false
	}
	if err != nil {
		log.Printf("rid=%s msg=get_file_failed file_id=%d err=%v", RequestIDFromContext(r.Context()), id, err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return nil, false
	}

	// A row without a storage path can't be acted on; the uploader never
	// writes one, so this is corrupt metadata.
	if file.StoragePath == "" {
		log.Printf("rid=%s msg=inconsistent_metadata file_id=%d", RequestIDFromContext(r.Context()), id)
		writeError(w, http.StatusInternalServerError, "file metadata inconsistent")
		return nil, false
	}

	return file, true
}
