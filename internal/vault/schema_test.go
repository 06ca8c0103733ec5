package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryValidation(t *testing.T) {
	valid := Model{
		ContentTypeID: "post",
		Table:         "posts",
		Fields:        []Field{{ID: "title", Column: "title", Kind: FieldText}},
	}

	t.Run("accepts a valid model", func(t *testing.T) {
		reg, err := NewRegistry(valid)
		require.NoError(t, err)

		table, ok := reg.ResolveTable("post")
		require.True(t, ok)
		assert.Equal(t, "posts", table)

		fields, ok := reg.ResolveFields("post")
		require.True(t, ok)
		assert.Len(t, fields, 1)
	})

	t.Run("unknown content type resolves to false", func(t *testing.T) {
		reg, err := NewRegistry(valid)
		require.NoError(t, err)

		_, ok := reg.ResolveTable("vaporware")
		assert.False(t, ok)

		_, ok = reg.ResolveFields("vaporware")
		assert.False(t, ok)
	})

	tests := []struct {
		name  string
		model Model
	}{
		{"missing content type id", Model{Table: "t"}},
		{"invalid table name", Model{ContentTypeID: "x", Table: "bad-name"}},
		{"sql in table name", Model{ContentTypeID: "x", Table: "t; DROP TABLE assets"}},
		{"field without id", Model{ContentTypeID: "x", Table: "t", Fields: []Field{{Column: "c"}}}},
		{"invalid column name", Model{ContentTypeID: "x", Table: "t", Fields: []Field{{ID: "f", Column: "c c"}}}},
		{"reserved column", Model{ContentTypeID: "x", Table: "t", Fields: []Field{{ID: "f", Column: "remote_id"}}}},
		{"duplicate column", Model{ContentTypeID: "x", Table: "t", Fields: []Field{
			{ID: "f1", Column: "c", Kind: FieldText},
			{ID: "f2", Column: "c", Kind: FieldText},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.model)
			assert.Error(t, err)
		})
	}

	t.Run("duplicate content type", func(t *testing.T) {
		_, err := NewRegistry(valid, valid)
		assert.Error(t, err)
	})

	t.Run("duplicate table", func(t *testing.T) {
		other := valid
		other.ContentTypeID = "post2"

		_, err := NewRegistry(valid, other)
		assert.Error(t, err)
	})

	t.Run("link fields need no column", func(t *testing.T) {
		_, err := NewRegistry(Model{
			ContentTypeID: "x",
			Table:         "t",
			Fields:        []Field{{ID: "ref", Kind: FieldLink}, {ID: "refs", Kind: FieldLinkArray}},
		})
		assert.NoError(t, err)
	})
}

func TestCreateTableSQL(t *testing.T) {
	m := Model{
		ContentTypeID: "post",
		Table:         "posts",
		Fields: []Field{
			{ID: "title", Column: "title", Kind: FieldText},
			{ID: "published", Column: "published", Kind: FieldBool},
			{ID: "tags", Column: "tags", Kind: FieldArray},
			{ID: "meta", Column: "meta", Kind: FieldBlob},
			{ID: "author", Kind: FieldLink},
		},
	}

	sql := createTableSQL(&m)

	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS posts")
	assert.Contains(t, sql, "remote_id TEXT PRIMARY KEY")
	assert.Contains(t, sql, "title TEXT")
	assert.Contains(t, sql, "published TEXT")
	assert.Contains(t, sql, "tags BLOB")
	assert.Contains(t, sql, "meta BLOB")
	assert.NotContains(t, sql, "author")
}

func TestParseFieldKind(t *testing.T) {
	for _, kind := range []FieldKind{FieldText, FieldBool, FieldBlob, FieldArray, FieldLink, FieldLinkArray} {
		parsed, err := ParseFieldKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseFieldKind("symbol")
	assert.Error(t, err)
}
