package resolve

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"nameres/internal/engine/modtree"
	"nameres/internal/engine/symbols"
	"nameres/internal/shared/observability"
)

const sqliteDriverName = "sqlite"

// DeclRecord is a persisted declaration row.
type DeclRecord struct {
	Module string
	Name   string
	Kind   string
	File   string
	Line   int
	Column int
}

// ResolutionRecord is a persisted use-site answer.
type ResolutionRecord struct {
	RunID        string
	Module       string
	Path         string
	File         string
	Line         int
	Column       int
	TargetModule string
	TargetName   string
	TargetKind   string
}

// Store persists declarations and batch resolutions to SQLite so other
// processes can query results after the batch exits. Rows are keyed by
// project so several units can share one database file.
type Store struct {
	db         *sql.DB
	projectKey string
	declStmt   *sql.Stmt

	cacheMu   sync.RWMutex
	declCache map[string][]DeclRecord
}

func OpenStore(path, projectKey string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open resolution store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping resolution store %q: %w", cleanPath, err)
	}

	if err := migrateStoreSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	key := strings.TrimSpace(projectKey)
	if key == "" {
		key = "default"
	}

	declStmt, err := db.Prepare(`SELECT module_path, name, kind, file, line, col
FROM declarations
WHERE project_key = ? AND name = ?
ORDER BY module_path, kind`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare declaration lookup stmt: %w", err)
	}

	return &Store{
		db:         db,
		projectKey: key,
		declStmt:   declStmt,
		declCache:  make(map[string][]DeclRecord),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.declStmt != nil {
		_ = s.declStmt.Close()
	}
	return s.db.Close()
}

func (s *Store) clearCache() {
	if s == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.declCache = make(map[string][]DeclRecord)
}

// SyncDeclarations replaces the project's declaration rows with the
// current tables. Returns the run ID stamped on the batch.
func (s *Store) SyncDeclarations(tree *modtree.Tree, tables *symbols.Tables) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("store not initialized")
	}
	start := time.Now()
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin declaration sync tx: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM declarations WHERE project_key = ?`, s.projectKey); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("clear declaration rows: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO declarations
  (project_key, run_id, module_path, name, kind, file, line, col)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("prepare declaration insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range tree.Modules() {
		table := tables.ForModule(id)
		if table == nil {
			continue
		}
		for _, d := range table.Declarations() {
			if _, err := stmt.Exec(
				s.projectKey, runID,
				d.ModulePath, d.Name, d.Kind.String(),
				d.Location.File, d.Location.Line, d.Location.Column,
			); err != nil {
				_ = tx.Rollback()
				return "", fmt.Errorf("insert declaration row (%s::%s): %w", d.ModulePath, d.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit declaration sync tx: %w", err)
	}
	s.clearCache()
	observability.StoreSyncDuration.Observe(time.Since(start).Seconds())
	return runID, nil
}

// RecordResolutions appends the batch's resolved use-sites under a run ID.
func (s *Store) RecordResolutions(runID string, resolved []ResolvedUse) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin resolution tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO resolutions
  (project_key, run_id, module_path, path, file, line, col, target_module, target_name, target_kind)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare resolution insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range resolved {
		if _, err := stmt.Exec(
			s.projectKey, runID,
			r.ModPath, r.Ref.Raw,
			r.Ref.Location.File, r.Ref.Location.Line, r.Ref.Location.Column,
			r.Decl.ModulePath, r.Decl.Name, r.Decl.Kind.String(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert resolution row (%s %q): %w", r.ModPath, r.Ref.Raw, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolution tx: %w", err)
	}
	return nil
}

// LookupDeclarations finds persisted declarations by bare name.
func (s *Store) LookupDeclarations(name string) []DeclRecord {
	if s == nil || s.db == nil || s.declStmt == nil {
		return nil
	}
	key := strings.TrimSpace(name)
	if key == "" {
		return nil
	}

	s.cacheMu.RLock()
	if res, ok := s.declCache[key]; ok {
		s.cacheMu.RUnlock()
		return res
	}
	s.cacheMu.RUnlock()

	rows, err := s.declStmt.Query(s.projectKey, key)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]DeclRecord, 0)
	for rows.Next() {
		var rec DeclRecord
		if err := rows.Scan(&rec.Module, &rec.Name, &rec.Kind, &rec.File, &rec.Line, &rec.Column); err != nil {
			continue
		}
		out = append(out, rec)
	}

	s.cacheMu.Lock()
	s.declCache[key] = out
	s.cacheMu.Unlock()
	return out
}

// LookupResolution answers the persisted resolution for a use-site
// location, if any run recorded one.
func (s *Store) LookupResolution(file string, line, column int) (*ResolutionRecord, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	var rec ResolutionRecord
	err := s.db.QueryRow(`SELECT run_id, module_path, path, file, line, col, target_module, target_name, target_kind
FROM resolutions
WHERE project_key = ? AND file = ? AND line = ? AND col = ?
ORDER BY rowid DESC LIMIT 1`,
		s.projectKey, file, line, column,
	).Scan(&rec.RunID, &rec.Module, &rec.Path, &rec.File, &rec.Line, &rec.Column,
		&rec.TargetModule, &rec.TargetName, &rec.TargetKind)
	if err != nil {
		return nil, false
	}
	return &rec, true
}

// migrateStoreSchema creates or migrates the store to schema v1.
func migrateStoreSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)

	if version == 0 {
		_, err := db.Exec(`
CREATE TABLE declarations (
  project_key TEXT NOT NULL,
  run_id TEXT NOT NULL,
  module_path TEXT NOT NULL,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  file TEXT NOT NULL DEFAULT '',
  line INTEGER NOT NULL DEFAULT 0,
  col INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (project_key, module_path, name, kind)
);
CREATE INDEX idx_declarations_project_name ON declarations(project_key, name);

CREATE TABLE resolutions (
  project_key TEXT NOT NULL,
  run_id TEXT NOT NULL,
  module_path TEXT NOT NULL,
  path TEXT NOT NULL,
  file TEXT NOT NULL DEFAULT '',
  line INTEGER NOT NULL DEFAULT 0,
  col INTEGER NOT NULL DEFAULT 0,
  target_module TEXT NOT NULL,
  target_name TEXT NOT NULL,
  target_kind TEXT NOT NULL,
  PRIMARY KEY (project_key, module_path, path, file, line, col)
);
CREATE INDEX idx_resolutions_project_site ON resolutions(project_key, file, line, col);

PRAGMA user_version = 1;
`)
		if err != nil {
			return fmt.Errorf("create v1 schema: %w", err)
		}
	}

	return nil
}
