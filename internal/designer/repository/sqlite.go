package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"track-designer/internal/designer/models"
)

// ============================================================
// SQLite Repository
// ============================================================

// ErrNotFound — документа с таким id нет.
var ErrNotFound = errors.New("design not found")

// Summary — строка списка документов, без самого макета.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (r *Repository) runMigrations(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// ============================================================
// CRUD
// ============================================================

// Save пишет документ целиком (insert или replace).
func (r *Repository) Save(ctx context.Context, rec models.DesignRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO designs (id, name, document, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            document = excluded.document,
            updated_at = excluded.updated_at
    `, rec.ID, rec.Name, string(doc), now, now)
	if err != nil {
		return fmt.Errorf("save design: %w", err)
	}
	return nil
}

// Get читает документ по id.
func (r *Repository) Get(ctx context.Context, id string) (models.DesignRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT document FROM designs WHERE id = ?
    `, id)

	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DesignRecord{}, ErrNotFound
		}
		return models.DesignRecord{}, err
	}

	var rec models.DesignRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return models.DesignRecord{}, fmt.Errorf("unmarshal design %s: %w", id, err)
	}
	return rec, nil
}

// List возвращает сводки всех документов, свежие первыми.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, created_at, updated_at
        FROM designs
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete удаляет документ.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
