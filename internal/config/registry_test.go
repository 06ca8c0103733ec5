package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentvault/vault-go/internal/vault"
)

func TestRegistry(t *testing.T) {
	cfg := &Config{
		Models: []ModelConfig{{
			ContentType: "post",
			Table:       "posts",
			Fields: []FieldConfig{
				{ID: "title", Kind: "text"},
				{ID: "body", Column: "body_text", Kind: "blob"},
				{ID: "author", Kind: "link"},
			},
		}},
	}

	reg, err := cfg.Registry()
	require.NoError(t, err)

	table, ok := reg.ResolveTable("post")
	require.True(t, ok)
	assert.Equal(t, "posts", table)

	fields, ok := reg.ResolveFields("post")
	require.True(t, ok)
	require.Len(t, fields, 3)

	// Column defaults to the field ID.
	assert.Equal(t, "title", fields[0].Column)
	assert.Equal(t, "body_text", fields[1].Column)
	assert.Equal(t, vault.FieldLink, fields[2].Kind)
}

func TestRegistryBadKind(t *testing.T) {
	cfg := &Config{
		Models: []ModelConfig{{
			ContentType: "post",
			Table:       "posts",
			Fields:      []FieldConfig{{ID: "title", Kind: "varchar"}},
		}},
	}

	_, err := cfg.Registry()
	assert.Error(t, err)
}

func TestRegistryBadTable(t *testing.T) {
	cfg := &Config{
		Models: []ModelConfig{{ContentType: "post", Table: "posts; DROP TABLE"}},
	}

	_, err := cfg.Registry()
	assert.Error(t, err)
}
