// Package markers persists lint annotations attached to workspace resources
// in SQLite.
package markers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"csslint/internal/core/workspace"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Depth selects which resources a query or delete covers, relative to the
// resource it is called on.
type Depth int

const (
	DepthZero Depth = iota
	DepthOne
	DepthInfinite
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Attributes are the caller-supplied fields of a marker.
type Attributes struct {
	Message   string
	Severity  Severity
	Line      int
	Column    int
	Category  string
	SourceTag string
}

// Marker is a stored annotation.
type Marker struct {
	ID      uuid.UUID
	Project string
	Path    string
	Kind    string
	Attributes
	CreatedAt time.Time
}

// Resource returns the workspace address of the marked resource.
func (m Marker) Resource() workspace.Resource {
	if m.Path == "" {
		return workspace.Resource{Project: m.Project, Kind: workspace.ProjectRoot}
	}
	return workspace.Resource{Project: m.Project, Path: m.Path, Kind: workspace.File}
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

// Open opens or creates the database at path and applies migrations.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("marker database path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("marker database path %q is a directory, expected file", cleanPath)
	}
	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create marker database directory %q: %w", dir, err)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite markers %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite markers %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create stores one marker on res.
func (s *Store) Create(ctx context.Context, res workspace.Resource, kind string, attrs Attributes) (Marker, error) {
	created, err := s.CreateBatch(ctx, res, kind, []Attributes{attrs})
	if err != nil {
		return Marker{}, err
	}
	return created[0], nil
}

// CreateBatch stores every marker in one transaction: either all are
// written or none.
func (s *Store) CreateBatch(ctx context.Context, res workspace.Resource, kind string, batch []Attributes) ([]Marker, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	created := make([]Marker, 0, len(batch))
	for _, attrs := range batch {
		if attrs.Severity == "" {
			attrs.Severity = SeverityWarning
		}
		created = append(created, Marker{
			ID:         uuid.New(),
			Project:    res.Project,
			Path:       res.Path,
			Kind:       kind,
			Attributes: attrs,
			CreatedAt:  now,
		})
	}

	err := s.withRetry(ctx, "create markers", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO markers (id, project, path, kind, message, severity, line, col, category, source_tag, created_at_utc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, m := range created {
			if _, err := stmt.ExecContext(ctx,
				m.ID.String(), m.Project, m.Path, m.Kind, m.Message, string(m.Severity),
				m.Line, m.Column, m.Category, m.SourceTag, m.CreatedAt.Format(time.RFC3339Nano),
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteAll removes the markers of kind on res at depth and reports how many
// were removed.
func (s *Store) DeleteAll(ctx context.Context, res workspace.Resource, kind string, depth Depth) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	where, args := scope(res, kind, depth)
	var removed int64
	err := s.withRetry(ctx, "delete markers", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM markers WHERE `+where, args...)
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	return removed, err
}

// Find lists the markers of kind on res at depth ordered by path and
// position. An empty kind matches every kind.
func (s *Store) Find(ctx context.Context, res workspace.Resource, kind string, depth Depth) ([]Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	where, args := scope(res, kind, depth)
	query := `
SELECT id, project, path, kind, message, severity, line, col, category, source_tag, created_at_utc
FROM markers WHERE ` + where + ` ORDER BY project, path, line, col, rowid`

	var rows *sql.Rows
	err := s.withRetry(ctx, "find markers", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Marker, 0)
	for rows.Next() {
		var (
			m        Marker
			idRaw    string
			severity string
			tsRaw    string
		)
		if err := rows.Scan(&idRaw, &m.Project, &m.Path, &m.Kind, &m.Message, &severity,
			&m.Line, &m.Column, &m.Category, &m.SourceTag, &tsRaw); err != nil {
			return nil, fmt.Errorf("scan marker row: %w", err)
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			return nil, fmt.Errorf("parse marker id %q: %w", idRaw, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse marker timestamp %q: %w", tsRaw, err)
		}
		m.ID = id
		m.Severity = Severity(severity)
		m.CreatedAt = ts.UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marker rows: %w", err)
	}
	return out, nil
}

// scope builds the WHERE clause selecting markers of kind at depth below res.
func scope(res workspace.Resource, kind string, depth Depth) (string, []any) {
	clauses := []string{"project = ?"}
	args := []any{res.Project}
	if kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, kind)
	}

	p := res.Path
	childPrefix := escapeLike(p) + "/"
	if p == "" {
		childPrefix = ""
	}
	switch depth {
	case DepthZero:
		clauses = append(clauses, "path = ?")
		args = append(args, p)
	case DepthOne:
		clauses = append(clauses, `(path = ? OR (path LIKE ? ESCAPE '\' AND path NOT LIKE ? ESCAPE '\'))`)
		args = append(args, p, childPrefix+"%", childPrefix+"%/%")
	case DepthInfinite:
		if p != "" {
			clauses = append(clauses, `(path = ? OR path LIKE ? ESCAPE '\')`)
			args = append(args, p, childPrefix+"%")
		}
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
