package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// KindPrompt запись о синтезе промпта; для follow-up в Kind пишется идентификатор действия.
const KindPrompt = "prompt"

// Record одна успешная генерация.
type Record struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	DetailLevel string    `json:"detail_level,omitempty"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store журнал генераций в SQLite. В состояние сессии ничего не читается обратно.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open открывает (или создаёт) базу. ":memory:" — база в памяти.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if path == ":memory:" {
		// у каждого соединения своя память
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		detail_level TEXT,
		input        TEXT NOT NULL,
		output       TEXT NOT NULL,
		title        TEXT,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS generations_created ON generations(created_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add сохраняет запись; пустые ID и CreatedAt заполняются.
func (s *Store) Add(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, kind, detail_level, input, output, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.DetailLevel, rec.Input, rec.Output, rec.Title,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// List возвращает последние записи, новые первыми.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, detail_level, input, output, title, created_at
		FROM generations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec          Record
			level, title sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &level, &rec.Input, &rec.Output, &title, &createdAt); err != nil {
			return nil, err
		}
		rec.DetailLevel = level.String
		rec.Title = title.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
