package server

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Folder is the API shape of a folder row. The password hash never leaves
// the store layer: it has no field here, only the derived protection flag.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Protected bool      `json:"is_protected"`
}

var (
	errNotFound      = errors.New("not found")
	errDuplicateName = errors.New("folder name already exists")
)

// isUniqueViolation reports whether err is SQLSTATE 23505. The service runs
// on the pgx driver; the integration suite dials through lib/pq, so both
// error shapes are recognised.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func createFolder(ctx context.Context, db *sql.DB, name string, passwordHash *string) (*Folder, error) {
	f := &Folder{Name: name, Protected: passwordHash != nil}
	err := db.QueryRowContext(ctx,
		`INSERT INTO folders (name, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		name, passwordHash,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errDuplicateName
		}
		return nil, err
	}
	return f, nil
}

func listFolders(ctx context.Context, db *sql.DB) ([]Folder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, password_hash FROM folders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []Folder{}
	for rows.Next() {
		var f Folder
		var hash sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &hash); err != nil {
			return nil, err
		}
		f.Protected = hash.Valid
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func getFolder(ctx context.Context, db *sql.DB, id int64) (*Folder, error) {
	var f Folder
	var hash sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, password_hash FROM folders WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}
	f.Protected = hash.Valid
	return &f, nil
}

// folderPasswordHash fetches the stored hash for verification. ok is false
// when the folder is missing or has no password set; either way there is
// nothing a candidate password could match.
func folderPasswordHash(ctx context.Context, db *sql.DB, id int64) (hash string, ok bool, err error) {
	var h sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT password_hash FROM folders WHERE id = $1`,
		id,
	).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return h.String, h.Valid, nil
}

// deleteFolderRow removes the folder row; the ON DELETE CASCADE constraint
// on files.folder_id removes the file rows in the same transaction.
func deleteFolderRow(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	return err
}
