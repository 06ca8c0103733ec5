package vault

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	// Pure-Go SQLite driver (no CGO), registers as "sqlite".
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the SQLite database backing one vault: the fixed tables
// (sync_info, assets, entry_types, links) created by migrations, plus
// one table per registered model created from its descriptors.
type Store struct {
	db       *sql.DB
	registry *Registry
	logger   *slog.Logger
}

// Open opens the SQLite database at path, applies migrations, and
// creates any missing model tables. The database uses WAL mode with
// synchronous=FULL for crash-safe durability. Use ":memory:" for tests.
func Open(path string, registry *Registry, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"+
			"&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("vault: opening database %s: %w", path, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, registry: registry, logger: logger}

	if err := s.ensureModelTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("vault store ready",
		slog.String("path", path),
		slog.Int("models", len(registry.Models())),
	)

	return s, nil
}

// runMigrations applies all pending schema migrations using the goose
// v3 Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	// Strip the "migrations/" prefix so goose sees files at the root of the FS.
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("vault: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("vault: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("vault: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// ensureModelTables creates the per-content-type tables from registered
// descriptors. Model tables cannot live in static migrations because
// the model set is supplied by the embedding application.
func (s *Store) ensureModelTables(ctx context.Context) error {
	for _, m := range s.registry.Models() {
		if _, err := s.db.ExecContext(ctx, createTableSQL(m)); err != nil {
			return fmt.Errorf("vault: creating table %s: %w", m.Table, err)
		}

		s.logger.Debug("model table ensured",
			slog.String("content_type", m.ContentTypeID),
			slog.String("table", m.Table),
		)
	}

	return nil
}

// SyncState returns the stored continuation token and locale, or empty
// strings if no sync has completed yet.
func (s *Store) SyncState(ctx context.Context) (token, locale string, err error) {
	var tok, loc sql.NullString

	err = s.db.QueryRowContext(ctx, `SELECT token, locale FROM sync_info`).Scan(&tok, &loc)
	if err == sql.ErrNoRows {
		return "", "", nil
	}

	if err != nil {
		return "", "", fmt.Errorf("vault: reading sync state: %w", err)
	}

	return tok.String, loc.String, nil
}

// clearRecords wipes all synced state: every model table, assets, the
// type index, the link graph, and the sync_info row. Used for forced
// invalidation and locale changes.
func (s *Store) clearRecords(ctx context.Context) error {
	tables := []string{"assets", "entry_types", "links", "sync_info"}
	for _, m := range s.registry.Models() {
		tables = append(tables, m.Table)
	}

	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("vault: clearing table %s: %w", table, err)
		}
	}

	s.logger.Info("cleared all synced records", slog.Int("tables", len(tables)))

	return nil
}

// AssetRecord is one cached asset row.
type AssetRecord struct {
	RemoteID    string
	CreatedAt   string
	UpdatedAt   string
	URL         string
	MIMEType    string
	Title       string
	Description string
	File        []byte
}

// GetAsset returns the cached asset with the given remote id, or nil if
// it is not cached.
func (s *Store) GetAsset(ctx context.Context, remoteID string) (*AssetRecord, error) {
	var (
		a                             AssetRecord
		createdAt, updatedAt          sql.NullString
		url, mime, title, description sql.NullString
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT remote_id, created_at, updated_at, url, mime_type, title, description, file
		 FROM assets WHERE remote_id = ?`, remoteID).
		Scan(&a.RemoteID, &createdAt, &updatedAt, &url, &mime, &title, &description, &a.File)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("vault: getting asset %s: %w", remoteID, err)
	}

	a.CreatedAt = createdAt.String
	a.UpdatedAt = updatedAt.String
	a.URL = url.String
	a.MIMEType = mime.String
	a.Title = title.String
	a.Description = description.String

	return &a, nil
}

// LinkEdge is one outgoing reference from a parent entry's field to a
// child resource.
type LinkEdge struct {
	Parent  string
	Field   string
	Child   string
	IsAsset bool
}

// ListLinks returns all outgoing edges of a parent entry, ordered by
// field then child.
func (s *Store) ListLinks(ctx context.Context, parent string) ([]LinkEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent, field, child, is_asset FROM links
		 WHERE parent = ? ORDER BY field, child`, parent)
	if err != nil {
		return nil, fmt.Errorf("vault: listing links for %s: %w", parent, err)
	}
	defer rows.Close()

	var edges []LinkEdge

	for rows.Next() {
		var e LinkEdge
		if err := rows.Scan(&e.Parent, &e.Field, &e.Child, &e.IsAsset); err != nil {
			return nil, fmt.Errorf("vault: scanning link row: %w", err)
		}

		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterating link rows: %w", err)
	}

	return edges, nil
}

// EntryTypeID returns the content type id indexed for an entry, or ""
// if the entry was never indexed.
func (s *Store) EntryTypeID(ctx context.Context, remoteID string) (string, error) {
	var typeID string

	err := s.db.QueryRowContext(ctx,
		`SELECT type_id FROM entry_types WHERE remote_id = ?`, remoteID).Scan(&typeID)
	if err == sql.ErrNoRows {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("vault: looking up entry type for %s: %w", remoteID, err)
	}

	return typeID, nil
}

// EntryRows returns every cached row of one content type as column-keyed
// maps, ordered by remote id.
func (s *Store) EntryRows(ctx context.Context, contentTypeID string) ([]map[string]any, error) {
	table, ok := s.registry.ResolveTable(contentTypeID)
	if !ok {
		return nil, fmt.Errorf("vault: no model registered for content type %q", contentTypeID)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY remote_id")
	if err != nil {
		return nil, fmt.Errorf("vault: reading rows of %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("vault: reading columns of %s: %w", table, err)
	}

	var out []map[string]any

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("vault: scanning row of %s: %w", table, err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterating rows of %s: %w", table, err)
	}

	return out, nil
}

// CountRows returns the row count of one of the vault's tables. The
// name must be a fixed table or a registered model table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !s.knownTable(table) {
		return 0, fmt.Errorf("vault: unknown table %q", table)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("vault: counting rows in %s: %w", table, err)
	}

	return count, nil
}

func (s *Store) knownTable(table string) bool {
	switch table {
	case "assets", "entry_types", "links", "sync_info":
		return true
	}

	for _, m := range s.registry.Models() {
		if m.Table == table {
			return true
		}
	}

	return false
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Nullable helper: empty string → NULL in SQLite.
// ---------------------------------------------------------------------------

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: s, Valid: true}
}
