package config

import (
	"fmt"

	"github.com/contentvault/vault-go/internal/vault"
)

// Registry converts the declared content models into a vault schema
// registry. Columns default to the field ID when not set explicitly.
func (c *Config) Registry() (*vault.Registry, error) {
	models := make([]vault.Model, 0, len(c.Models))

	for _, m := range c.Models {
		fields := make([]vault.Field, 0, len(m.Fields))

		for _, f := range m.Fields {
			kind, err := vault.ParseFieldKind(f.Kind)
			if err != nil {
				return nil, fmt.Errorf("model %q field %q: %w", m.ContentType, f.ID, err)
			}

			column := f.Column
			if column == "" {
				column = f.ID
			}

			fields = append(fields, vault.Field{ID: f.ID, Column: column, Kind: kind})
		}

		models = append(models, vault.Model{
			ContentTypeID: m.ContentType,
			Table:         m.Table,
			Fields:        fields,
		})
	}

	return vault.NewRegistry(models...)
}
