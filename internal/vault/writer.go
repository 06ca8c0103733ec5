package vault

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contentvault/vault-go/internal/cda"
)

// Well-known asset field ids in the delivery payload.
const (
	assetFieldFile        = "file"
	assetFieldTitle       = "title"
	assetFieldDescription = "description"
)

// resourceWriter materializes fetched resources into rows within the
// cycle's transaction. It never commits; the runner owns the
// transaction boundary.
type resourceWriter struct {
	tx     *sql.Tx
	locale string
	logger *slog.Logger
}

// writeAsset upserts one asset row: metadata copied verbatim, the URL
// protocol-normalized, and the file metadata map blob-encoded. A file
// map that cannot be encoded aborts the cycle.
func (w *resourceWriter) writeAsset(ctx context.Context, res *cda.Resource) error {
	fileMap := res.FieldMap(assetFieldFile, w.locale)

	var fileBlob []byte

	if fileMap != nil {
		b, err := encodeBlob(fileMap)
		if err != nil {
			return &EncodingError{ResourceID: res.ID(), Field: assetFieldFile, Err: err}
		}

		fileBlob = b
	}

	var rawURL, mimeType string
	if fileMap != nil {
		rawURL, _ = fileMap["url"].(string)
		mimeType, _ = fileMap["contentType"].(string)
	}

	_, err := w.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO assets
			(remote_id, created_at, updated_at, url, mime_type, title, description, file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID(), res.Sys.CreatedAt, res.Sys.UpdatedAt,
		nullString(canonicalURL(rawURL)),
		nullString(mimeType),
		nullString(res.FieldString(assetFieldTitle, w.locale)),
		nullString(res.FieldString(assetFieldDescription, w.locale)),
		fileBlob,
	)
	if err != nil {
		return fmt.Errorf("vault: upserting asset %s: %w", res.ID(), err)
	}

	return nil
}

// canonicalURL normalizes a protocol-relative asset URL to https.
// Absolute URLs pass through unchanged.
func canonicalURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}

	return rawURL
}

// writeEntry upserts one entry row into its model table, dispatching
// each declared field by kind, then upserts the entry's type-index row.
func (w *resourceWriter) writeEntry(ctx context.Context, res *cda.Resource, table string, fields []Field) error {
	cols := []string{ColRemoteID, ColCreatedAt, ColUpdatedAt}
	args := []any{res.ID(), res.Sys.CreatedAt, res.Sys.UpdatedAt}

	for _, f := range fields {
		raw := res.Field(f.ID, w.locale)

		switch f.Kind {
		case FieldLink:
			if err := w.writeSingleLink(ctx, res.ID(), f.ID, raw); err != nil {
				return err
			}

		case FieldLinkArray:
			if err := w.writeLinkArray(ctx, res.ID(), f.ID, raw); err != nil {
				return err
			}

		case FieldArray:
			// The whole ordered sequence is one blob column value;
			// an absent array encodes as empty, not NULL.
			if raw == nil {
				raw = []any{}
			}

			b, err := encodeBlob(raw)
			if err != nil {
				return &EncodingError{ResourceID: res.ID(), Field: f.ID, Err: err}
			}

			cols = append(cols, f.Column)
			args = append(args, b)

		case FieldBlob:
			b, err := encodeBlob(raw)
			if err != nil {
				return &EncodingError{ResourceID: res.ID(), Field: f.ID, Err: err}
			}

			cols = append(cols, f.Column)
			args = append(args, b)

		case FieldBool:
			cols = append(cols, f.Column)
			args = append(args, encodeBool(raw))

		case FieldText:
			cols = append(cols, f.Column)
			args = append(args, encodeScalar(raw))
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	//nolint:gosec // table and columns are validated identifiers from the registry
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders)

	if _, err := w.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("vault: upserting entry %s into %s: %w", res.ID(), table, err)
	}

	_, err := w.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO entry_types (remote_id, type_id) VALUES (?, ?)`,
		res.ID(), res.ContentTypeID())
	if err != nil {
		return fmt.Errorf("vault: indexing entry type for %s: %w", res.ID(), err)
	}

	return nil
}

// writeSingleLink applies single-link field semantics: a present value
// replaces the at-most-one existing edge for the field, a nil value
// clears it. A present value without well-formed link metadata is left
// untouched (well-formed payload assumption).
func (w *resourceWriter) writeSingleLink(ctx context.Context, parent, fieldID string, raw any) error {
	if raw == nil {
		return clearFieldLinks(ctx, w.tx, parent, fieldID)
	}

	linkType, target, ok := parseLink(raw)
	if !ok {
		w.logger.Debug("skipping malformed link value",
			slog.String("parent", parent),
			slog.String("field", fieldID),
		)

		return nil
	}

	if err := clearFieldLinks(ctx, w.tx, parent, fieldID); err != nil {
		return err
	}

	return replaceLink(ctx, w.tx, parent, fieldID, linkType, target)
}

// writeLinkArray replaces the full edge set of an array-of-links field:
// existing edges are cleared first, then one edge per link object.
func (w *resourceWriter) writeLinkArray(ctx context.Context, parent, fieldID string, raw any) error {
	if err := clearFieldLinks(ctx, w.tx, parent, fieldID); err != nil {
		return err
	}

	items, _ := raw.([]any)
	for _, item := range items {
		linkType, target, ok := parseLink(item)
		if !ok {
			w.logger.Debug("skipping malformed link in array",
				slog.String("parent", parent),
				slog.String("field", fieldID),
			)

			continue
		}

		if err := replaceLink(ctx, w.tx, parent, fieldID, linkType, target); err != nil {
			return err
		}
	}

	return nil
}

// parseLink extracts the declared link type and target id from a raw
// link-reference map ({"sys": {"type": "Link", "linkType": ..., "id": ...}}).
func parseLink(raw any) (linkType, target string, ok bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", "", false
	}

	sys, ok := m["sys"].(map[string]any)
	if !ok {
		return "", "", false
	}

	linkType, _ = sys["linkType"].(string)
	target, _ = sys["id"].(string)

	if linkType == "" || target == "" {
		return "", "", false
	}

	return linkType, target, true
}
