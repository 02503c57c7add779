package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Migration represents a single database migration loaded from a SQL file.
type Migration struct {
	Version   int
	Name      string
	SQL       string
	AppliedAt time.Time
}

// MigrationStatus represents the status of a migration (applied or pending).
type MigrationStatus struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator handles reading and applying SQL migration files.
type Migrator struct {
	pool *pgxpool.Pool
	dir  string // path to migrations directory
}

// NewMigrator creates a new Migrator that reads migration files from migrationsDir
// and applies them using the provided connection pool.
func NewMigrator(pool *pgxpool.Pool, migrationsDir string) *Migrator {
	return &Migrator{
		pool: pool,
		dir:  migrationsDir,
	}
}

// EnsureMigrationsTable creates the _migrations tracking table if it does not
// already exist.
func (m *Migrator) EnsureMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMPTZ DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("create _migrations table: %w", err)
	}
	return nil
}

// LoadMigrations reads all .sql files from the migrations directory, parses the
// version number from the filename prefix (e.g., "001_core.sql" -> version 1),
// and returns them sorted by version. Files that do not start with a numeric
// prefix are silently skipped.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory %s: %w", m.dir, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		parts := strings.SplitN(name, "_", 2)
		if len(parts) < 2 {
			continue
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			// Skip files without a numeric prefix
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", name, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// AppliedVersions queries the _migrations table and returns a map of version
// numbers that have already been applied.
func (m *Migrator) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.pool.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied versions: %w", err)
	}

	return applied, nil
}

// Up applies all pending migrations in version order. Returns the count of
// applied migrations.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return 0, err
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		if err := m.applyMigration(ctx, mig); err != nil {
			return count, fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		count++
	}

	return count, nil
}

// applyMigration runs each statement of a migration individually and records
// the migration in the _migrations table. Statements are executed outside a
// transaction so that a skippable failure (e.g. an object that already
// exists from an earlier partial run) does not poison the ones that follow.
func (m *Migrator) applyMigration(ctx context.Context, mig Migration) error {
	statements := SplitStatements(mig.SQL)
	for i, stmt := range statements {
		if _, err := m.pool.Exec(ctx, stmt); err != nil {
			if IsSkippableError(err) {
				log.Warn().
					Str("migration", mig.Name).
					Int("statement", i+1).
					Str("reason", err.Error()).
					Msg("skipping statement")
				continue
			}
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if _, err := m.pool.Exec(ctx,
		"INSERT INTO _migrations (version, name) VALUES ($1, $2)",
		mig.Version, mig.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return nil
}

// Status returns the status of all known migrations (both applied and pending).
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	rows, err := m.pool.Query(ctx, `SELECT version, applied_at FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("query migration status: %w", err)
	}
	defer rows.Close()

	appliedMap := make(map[int]time.Time)
	for rows.Next() {
		var v int
		var at time.Time
		if err := rows.Scan(&v, &at); err != nil {
			return nil, fmt.Errorf("scan migration status: %w", err)
		}
		appliedMap[v] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration status: %w", err)
	}

	var statuses []MigrationStatus
	for _, mig := range migrations {
		status := MigrationStatus{
			Version: mig.Version,
			Name:    mig.Name,
		}
		if at, ok := appliedMap[mig.Version]; ok {
			status.Applied = true
			appliedAt := at
			status.AppliedAt = &appliedAt
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// skippableErrorParts are substrings of database errors that indicate a
// statement conflicts with state left behind by an earlier partial run.
// Such statements are safe to skip: the object they create already exists,
// or the object they drop is already gone.
var skippableErrorParts = []string{
	"already exists",
	"does not exist",
	"multiple primary keys",
	"policy",
	"trigger",
	"function",
	"index",
}

// IsSkippableError reports whether a migration statement failure can be
// ignored and the remaining statements still applied.
func IsSkippableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, part := range skippableErrorParts {
		if strings.Contains(msg, part) {
			return true
		}
	}
	return false
}

// SplitStatements splits a SQL script into individual statements on
// semicolons, respecting single-quoted strings and dollar-quoted bodies so
// that function and trigger definitions stay intact. Line comments are
// preserved inside the statement they precede. Empty statements are dropped.
func SplitStatements(script string) []string {
	var (
		statements []string
		buf        strings.Builder
		inQuote    bool
		dollarTag  string
	)

	for i := 0; i < len(script); i++ {
		ch := script[i]

		if dollarTag != "" {
			// Close only on the delimiter itself in the input; matching
			// against the buffer can fire early when the body's own text
			// runs into the tag characters.
			if ch == '$' && strings.HasPrefix(script[i:], dollarTag) {
				buf.WriteString(dollarTag)
				i += len(dollarTag) - 1
				dollarTag = ""
			} else {
				buf.WriteByte(ch)
			}
			continue
		}

		if inQuote {
			buf.WriteByte(ch)
			if ch == '\'' {
				// Doubled quote is an escaped quote, stay inside the string.
				if i+1 < len(script) && script[i+1] == '\'' {
					buf.WriteByte(script[i+1])
					i++
					continue
				}
				inQuote = false
			}
			continue
		}

		switch ch {
		case '\'':
			inQuote = true
			buf.WriteByte(ch)
		case '$':
			// Possible start of a dollar-quoted body: $$, $tag$
			if tag, ok := scanDollarTag(script[i:]); ok {
				dollarTag = tag
				buf.WriteString(tag)
				i += len(tag) - 1
			} else {
				buf.WriteByte(ch)
			}
		case ';':
			stmt := strings.TrimSpace(buf.String())
			if stmt != "" && !isCommentOnly(stmt) {
				statements = append(statements, stmt)
			}
			buf.Reset()
		default:
			buf.WriteByte(ch)
		}
	}

	if stmt := strings.TrimSpace(buf.String()); stmt != "" && !isCommentOnly(stmt) {
		statements = append(statements, stmt)
	}

	return statements
}

// scanDollarTag reads a dollar-quote delimiter ($$ or $tag$) from the start
// of s. Returns the full delimiter and true if one is present.
func scanDollarTag(s string) (string, bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", false
	}
	for i := 1; i < len(s); i++ {
		ch := s[i]
		if ch == '$' {
			return s[:i+1], true
		}
		if !isTagChar(ch) {
			return "", false
		}
	}
	return "", false
}

func isTagChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

// isCommentOnly reports whether every line of a statement fragment is a
// line comment or blank.
func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}
	return true
}
