package server

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// FileMeta is a file's metadata row. There is nothing secret on a file;
// every field is part of the API shape.
type FileMeta struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FolderID    int64     `json:"folder_id"`
	StoragePath string    `json:"storage_path"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// insertFile persists the metadata row and fills in id and uploaded_at.
func insertFile(ctx context.Context, db *sql.DB, f *FileMeta) error {
	return db.QueryRowContext(ctx,
		`INSERT INTO files (name, folder_id, storage_path, mime_type, size)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, uploaded_at`,
		f.Name, f.FolderID, f.StoragePath, f.MimeType, f.Size,
	).Scan(&f.ID, &f.UploadedAt)
}

func listFiles(ctx context.Context, db *sql.DB, folderID int64) ([]FileMeta, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, folder_id, storage_path, mime_type, size, uploaded_at
		 FROM files WHERE folder_id = $1 ORDER BY name ASC`,
		folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []FileMeta{}
	for rows.Next() {
		var f FileMeta
		if err := rows.Scan(&f.ID, &f.Name, &f.FolderID, &f.StoragePath, &f.MimeType, &f.Size, &f.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func getFile(ctx context.Context, db *sql.DB, id int64) (*FileMeta, error) {
	var f FileMeta
	err := db.QueryRowContext(ctx,
		`SELECT id, name, folder_id, storage_path, mime_type, size, uploaded_at
		 FROM files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.FolderID, &f.StoragePath, &f.MimeType, &f.Size, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &f, nil
}

func deleteFileRow(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	return err
}
