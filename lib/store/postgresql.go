package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresqlStore is a storage backend using PostgreSQL
type PostgresqlStore struct {
	db *sql.DB
}

// NewPostgresqlClient opens a PostgreSQL connection and makes sure the activities table exists
func NewPostgresqlClient(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id VARCHAR(36) PRIMARY KEY,
			file_name TEXT NOT NULL,
			data_type VARCHAR(16) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			modified_at TIMESTAMP WITH TIME ZONE NOT NULL,
			upload_id BIGINT NOT NULL DEFAULT 0,
			uploaded_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create activities table: %w", err)
	}

	return db, nil
}

// NewPostgresqlStore creates a new PostgreSQL-backed store
func NewPostgresqlStore(db *sql.DB) PostgresqlStore {
	return PostgresqlStore{db: db}
}

// Ping verifies database connectivity
func (s PostgresqlStore) Ping() error {
	return s.db.Ping()
}

// WriteActivity upserts an activity
func (s PostgresqlStore) WriteActivity(a Activity) error {
	_, err := s.db.Exec(`
		INSERT INTO activities (id, file_name, data_type, size, modified_at, upload_id, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			data_type = EXCLUDED.data_type,
			size = EXCLUDED.size,
			modified_at = EXCLUDED.modified_at,
			upload_id = EXCLUDED.upload_id,
			uploaded_at = EXCLUDED.uploaded_at
	`, a.ID, a.FileName, a.DataType, a.Size, a.ModifiedAt, a.UploadID, a.UploadedAt)

	if err != nil {
		slog.Error("Failed to write activity", "id", a.ID, "error", err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (Activity, error) {
	var a Activity
	var uploadedAt sql.NullTime
	err := row.Scan(&a.ID, &a.FileName, &a.DataType, &a.Size, &a.ModifiedAt, &a.UploadID, &uploadedAt)
	if err != nil {
		return Activity{}, err
	}
	if uploadedAt.Valid {
		t := uploadedAt.Time
		a.UploadedAt = &t
	}
	return a, nil
}

// GetActivity loads an activity by ID
func (s PostgresqlStore) GetActivity(id string) *Activity {
	row := s.db.QueryRow(`
		SELECT id, file_name, data_type, size, modified_at, upload_id, uploaded_at
		FROM activities WHERE id = $1
	`, id)

	a, err := scanActivity(row)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Debug("Failed to get activity", "id", id, "error", err)
		}
		return nil
	}
	return &a
}

// ListActivities loads every activity ordered by file name
func (s PostgresqlStore) ListActivities() ([]Activity, error) {
	rows, err := s.db.Query(`
		SELECT id, file_name, data_type, size, modified_at, upload_id, uploaded_at
		FROM activities ORDER BY file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}

// DeleteActivity removes an activity
func (s PostgresqlStore) DeleteActivity(id string) bool {
	_, err := s.db.Exec(`DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		slog.Error("Failed to delete activity", "id", id, "error", err)
		return false
	}
	return true
}
