package vault

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/contentvault/vault-go/internal/cda"
)

// replaceLink upserts one edge (parent, field, child), classifying it
// as asset or entry from the link's declared type tag. The tag is
// matched case-insensitively; any other tag is a malformed payload.
func replaceLink(ctx context.Context, tx *sql.Tx, parent, field, linkType, child string) error {
	var isAsset bool

	switch {
	case strings.EqualFold(linkType, string(cda.KindAsset)):
		isAsset = true
	case strings.EqualFold(linkType, string(cda.KindEntry)):
		isAsset = false
	default:
		return fmt.Errorf("vault: link %s.%s -> %s has unknown link type %q", parent, field, child, linkType)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO links (parent, field, child, is_asset)
		 VALUES (?, ?, ?, ?)`, parent, field, child, isAsset)
	if err != nil {
		return fmt.Errorf("vault: saving link %s.%s -> %s: %w", parent, field, child, err)
	}

	return nil
}

// clearFieldLinks deletes every edge for one (parent, field) pair. The
// edge set for a field always reflects only its most recently written
// value, so writers clear before inserting the new set.
func clearFieldLinks(ctx context.Context, tx *sql.Tx, parent, field string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM links WHERE parent = ? AND field = ?`, parent, field)
	if err != nil {
		return fmt.Errorf("vault: clearing links for %s.%s: %w", parent, field, err)
	}

	return nil
}

// deleteNodeLinks deletes every edge touching a resource, whether it
// appears as parent or child. Dangling references to a deleted child
// are removed, not flagged.
func deleteNodeLinks(ctx context.Context, tx *sql.Tx, remoteID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM links WHERE parent = ? OR child = ?`, remoteID, remoteID)
	if err != nil {
		return fmt.Errorf("vault: deleting links touching %s: %w", remoteID, err)
	}

	return nil
}
