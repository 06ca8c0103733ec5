package vault

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKind describes how a declared entry field is materialized into
// its table column (or, for link kinds, into the links table).
type FieldKind int

// Field kinds. Text, Bool, and Blob map to one column each; Array is
// blob-encoded as one ordered value; Link and LinkArray produce link
// edges and no column.
const (
	FieldText FieldKind = iota
	FieldBool
	FieldBlob
	FieldArray
	FieldLink
	FieldLinkArray
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldBool:
		return "bool"
	case FieldBlob:
		return "blob"
	case FieldArray:
		return "array"
	case FieldLink:
		return "link"
	case FieldLinkArray:
		return "link_array"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ParseFieldKind converts a config/database TEXT value to a FieldKind.
func ParseFieldKind(s string) (FieldKind, error) {
	switch strings.ToLower(s) {
	case "text":
		return FieldText, nil
	case "bool":
		return FieldBool, nil
	case "blob":
		return FieldBlob, nil
	case "array":
		return FieldArray, nil
	case "link":
		return FieldLink, nil
	case "link_array":
		return FieldLinkArray, nil
	default:
		return FieldText, fmt.Errorf("vault: unknown field kind %q", s)
	}
}

// hasColumn reports whether the kind materializes into a table column.
func (k FieldKind) hasColumn() bool {
	return k != FieldLink && k != FieldLinkArray
}

// columnType returns the SQLite column type for column-backed kinds.
func (k FieldKind) columnType() string {
	if k == FieldBlob || k == FieldArray {
		return "BLOB"
	}

	return "TEXT"
}

// Field declares one entry field: its remote field id, the local
// column name, and how it is materialized.
type Field struct {
	ID     string
	Column string
	Kind   FieldKind
}

// Model maps one remote content type to a local table and its declared
// fields. Content types without a registered model are skipped during
// sync.
type Model struct {
	ContentTypeID string
	Table         string
	Fields        []Field
}

// Base columns present on every resource table.
const (
	ColRemoteID  = "remote_id"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
)

// identRe restricts table and column names to plain SQL identifiers.
// Names are interpolated into DDL and DML, so anything else is refused
// at registration time.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedColumns are the base columns a model's fields must not shadow.
var reservedColumns = map[string]bool{
	ColRemoteID:  true,
	ColCreatedAt: true,
	ColUpdatedAt: true,
}

// Registry holds the content-type-to-model mapping supplied at vault
// construction. It is immutable after NewRegistry.
type Registry struct {
	byType map[string]*Model
}

// NewRegistry validates the given models and returns a registry over
// them. Table and column names must be plain identifiers, content type
// ids and tables must be unique, and fields must not shadow the base
// columns.
func NewRegistry(models ...Model) (*Registry, error) {
	byType := make(map[string]*Model, len(models))
	tables := make(map[string]string, len(models))

	for i := range models {
		m := models[i]

		if m.ContentTypeID == "" {
			return nil, fmt.Errorf("vault: model %d has no content type id", i)
		}

		if !identRe.MatchString(m.Table) {
			return nil, fmt.Errorf("vault: model %q: invalid table name %q", m.ContentTypeID, m.Table)
		}

		if prev, ok := tables[m.Table]; ok {
			return nil, fmt.Errorf("vault: table %q declared by both %q and %q", m.Table, prev, m.ContentTypeID)
		}

		if _, ok := byType[m.ContentTypeID]; ok {
			return nil, fmt.Errorf("vault: duplicate model for content type %q", m.ContentTypeID)
		}

		if err := validateFields(&m); err != nil {
			return nil, err
		}

		tables[m.Table] = m.ContentTypeID
		byType[m.ContentTypeID] = &m
	}

	return &Registry{byType: byType}, nil
}

func validateFields(m *Model) error {
	seen := make(map[string]bool, len(m.Fields))

	for _, f := range m.Fields {
		if f.ID == "" {
			return fmt.Errorf("vault: model %q has a field with no id", m.ContentTypeID)
		}

		if !f.Kind.hasColumn() {
			continue
		}

		if !identRe.MatchString(f.Column) {
			return fmt.Errorf("vault: model %q field %q: invalid column name %q", m.ContentTypeID, f.ID, f.Column)
		}

		if reservedColumns[f.Column] {
			return fmt.Errorf("vault: model %q field %q: column %q is reserved", m.ContentTypeID, f.ID, f.Column)
		}

		if seen[f.Column] {
			return fmt.Errorf("vault: model %q: duplicate column %q", m.ContentTypeID, f.Column)
		}

		seen[f.Column] = true
	}

	return nil
}

// ResolveTable returns the table name for a content type, or false if
// the type is not modeled locally.
func (r *Registry) ResolveTable(contentTypeID string) (string, bool) {
	m, ok := r.byType[contentTypeID]
	if !ok {
		return "", false
	}

	return m.Table, true
}

// ResolveFields returns the declared fields for a content type, or
// false if the type is not modeled locally.
func (r *Registry) ResolveFields(contentTypeID string) ([]Field, bool) {
	m, ok := r.byType[contentTypeID]
	if !ok {
		return nil, false
	}

	return m.Fields, true
}

// Models returns all registered models. Order is unspecified.
func (r *Registry) Models() []*Model {
	out := make([]*Model, 0, len(r.byType))
	for _, m := range r.byType {
		out = append(out, m)
	}

	return out
}

// createTableSQL builds the DDL for a model's table. The primary key on
// remote_id gives upsert-replace semantics via INSERT OR REPLACE.
func createTableSQL(m *Model) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", m.Table)
	fmt.Fprintf(&b, "\t%s TEXT PRIMARY KEY,\n", ColRemoteID)
	fmt.Fprintf(&b, "\t%s TEXT,\n\t%s TEXT", ColCreatedAt, ColUpdatedAt)

	for _, f := range m.Fields {
		if !f.Kind.hasColumn() {
			continue
		}

		fmt.Fprintf(&b, ",\n\t%s %s", f.Column, f.Kind.columnType())
	}

	b.WriteString("\n)")

	return b.String()
}
