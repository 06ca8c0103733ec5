package vault

import (
	"context"
	"database/sql"
	"fmt"
)

// deleteAsset removes an asset row and every edge touching it. Deleting
// an asset that was never cached is a no-op.
func deleteAsset(ctx context.Context, tx *sql.Tx, remoteID string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assets WHERE remote_id = ?`, remoteID); err != nil {
		return fmt.Errorf("vault: deleting asset %s: %w", remoteID, err)
	}

	return deleteNodeLinks(ctx, tx, remoteID)
}

// deleteEntry removes an entry row, its type-index row, and every edge
// touching it. The entry's table is found through the type index; an
// entry that was never indexed (or whose type is no longer modeled) is
// a no-op.
func deleteEntry(ctx context.Context, tx *sql.Tx, registry *Registry, remoteID string) error {
	var typeID string

	err := tx.QueryRowContext(ctx,
		`SELECT type_id FROM entry_types WHERE remote_id = ?`, remoteID).Scan(&typeID)
	if err == sql.ErrNoRows {
		return nil
	}

	if err != nil {
		return fmt.Errorf("vault: looking up type for deleted entry %s: %w", remoteID, err)
	}

	table, ok := registry.ResolveTable(typeID)
	if !ok {
		return nil
	}

	//nolint:gosec // table is a validated identifier from the registry
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE remote_id = ?", table), remoteID); err != nil {
		return fmt.Errorf("vault: deleting entry %s from %s: %w", remoteID, table, err)
	}

	if err := deleteNodeLinks(ctx, tx, remoteID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entry_types WHERE remote_id = ?`, remoteID); err != nil {
		return fmt.Errorf("vault: deleting type index for %s: %w", remoteID, err)
	}

	return nil
}
