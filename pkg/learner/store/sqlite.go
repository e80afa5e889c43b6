package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vantasec/argus/pkg/learner"
)

// SQLiteStore persists patterns in a SQLite database. It uses a
// write-ahead log for concurrent read performance and upserts keyed by
// pattern ID, so repeated saves stay cheap as the set grows.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	logger    *slog.Logger
	mu        sync.Mutex
	closeOnce sync.Once

	upsertStmt *sql.Stmt
	loadStmt   *sql.Stmt
}

// NewSQLiteStore opens (or creates) a SQLite pattern store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		logger: slog.Default().With("component", "pattern_store"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learned_patterns (
		pattern_id TEXT PRIMARY KEY,
		technique TEXT NOT NULL,
		pattern_regex TEXT NOT NULL,
		success_count INTEGER NOT NULL,
		total_attempts INTEGER NOT NULL,
		confidence REAL NOT NULL,
		source TEXT NOT NULL,
		target_models TEXT,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_patterns_technique ON learned_patterns(technique);
	CREATE INDEX IF NOT EXISTS idx_patterns_confidence ON learned_patterns(confidence);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertStmt, err = s.db.Prepare(`
		INSERT INTO learned_patterns (pattern_id, technique, pattern_regex, success_count,
			total_attempts, confidence, source, target_models, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pattern_id) DO UPDATE SET
			success_count = excluded.success_count,
			total_attempts = excluded.total_attempts,
			confidence = excluded.confidence,
			source = excluded.source,
			target_models = excluded.target_models,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT pattern_id, technique, pattern_regex, success_count, total_attempts,
			confidence, source, target_models, first_seen, last_seen
		FROM learned_patterns
		ORDER BY confidence DESC, pattern_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	return nil
}

// Load retrieves all persisted patterns. Rows that fail to decode are
// skipped with a warning.
func (s *SQLiteStore) Load(ctx context.Context) ([]learner.LearnedPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []learner.LearnedPattern
	skipped := 0
	for rows.Next() {
		var (
			p          learner.LearnedPattern
			source     string
			modelsJSON sql.NullString
			firstSeen  int64
			lastSeen   int64
		)
		if err := rows.Scan(&p.PatternID, &p.Technique, &p.PatternRegex,
			&p.SuccessCount, &p.TotalAttempts, &p.Confidence,
			&source, &modelsJSON, &firstSeen, &lastSeen); err != nil {
			skipped++
			continue
		}
		p.Source = learner.PatternSource(source)
		p.FirstSeen = time.Unix(firstSeen, 0).UTC()
		p.LastSeen = time.Unix(lastSeen, 0).UTC()
		if modelsJSON.Valid && modelsJSON.String != "" {
			if err := json.Unmarshal([]byte(modelsJSON.String), &p.TargetModels); err != nil {
				skipped++
				continue
			}
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed pattern rows",
			"path", s.dbPath, "skipped", skipped)
	}
	return patterns, nil
}

// Save upserts the full pattern set in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, patterns []learner.LearnedPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.upsertStmt)
	for i := range patterns {
		p := &patterns[i]

		var modelsJSON string
		if len(p.TargetModels) > 0 {
			b, err := json.Marshal(p.TargetModels)
			if err != nil {
				return fmt.Errorf("failed to marshal target models for %s: %w", p.PatternID, err)
			}
			modelsJSON = string(b)
		}

		if _, err := stmt.ExecContext(ctx,
			p.PatternID, p.Technique, p.PatternRegex,
			p.SuccessCount, p.TotalAttempts, p.Confidence,
			string(p.Source), modelsJSON,
			p.FirstSeen.Unix(), p.LastSeen.Unix(),
		); err != nil {
			return fmt.Errorf("failed to upsert pattern %s: %w", p.PatternID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close releases the database. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.upsertStmt != nil {
			s.upsertStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// Open builds a store from a backend name and path. Recognized
// backends are "file", "sqlite", and "memory".
func Open(backend, path string) (learner.Store, error) {
	switch strings.ToLower(backend) {
	case "", "file":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown pattern store backend %q", backend)
	}
}
