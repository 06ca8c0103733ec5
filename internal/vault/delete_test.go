package vault

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedEntry writes a post entry with one outgoing and one incoming edge.
func seedEntry(t *testing.T, store *Store, id string) {
	t.Helper()
	ctx := context.Background()

	inTx(t, store, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO posts (remote_id) VALUES (?)`, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO entry_types (remote_id, type_id) VALUES (?, 'post')`, id); err != nil {
			return err
		}

		if err := replaceLink(ctx, tx, id, "gallery", "Asset", "c1"); err != nil {
			return err
		}

		return replaceLink(ctx, tx, "x1", "author", "Entry", id)
	})
}

func TestDeleteAsset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("removes row and touching edges", func(t *testing.T) {
		inTx(t, store, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO assets (remote_id) VALUES ('a1')`); err != nil {
				return err
			}

			return replaceLink(ctx, tx, "e1", "cover", "Asset", "a1")
		})

		inTx(t, store, func(tx *sql.Tx) error {
			return deleteAsset(ctx, tx, "a1")
		})

		got, err := store.GetAsset(ctx, "a1")
		require.NoError(t, err)
		assert.Nil(t, got)

		edges, err := store.ListLinks(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, edges)
	})

	t.Run("never-cached asset is a no-op", func(t *testing.T) {
		inTx(t, store, func(tx *sql.Tx) error {
			return deleteAsset(ctx, tx, "ghost")
		})
	})
}

func TestDeleteEntry(t *testing.T) {
	registry := testRegistry(t)

	t.Run("cascade removes row, edges, and type index", func(t *testing.T) {
		store := newTestStore(t)
		ctx := context.Background()
		seedEntry(t, store, "e1")

		inTx(t, store, func(tx *sql.Tx) error {
			return deleteEntry(ctx, tx, registry, "e1")
		})

		count, err := store.CountRows(ctx, "posts")
		require.NoError(t, err)
		assert.Zero(t, count)

		typeID, err := store.EntryTypeID(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, typeID)

		// Both the outgoing edge and x1's incoming edge are gone; x1 itself untouched.
		edges, err := store.ListLinks(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, edges)

		edges, err = store.ListLinks(ctx, "x1")
		require.NoError(t, err)
		assert.Empty(t, edges)
	})

	t.Run("never-indexed entry is a no-op", func(t *testing.T) {
		store := newTestStore(t)
		ctx := context.Background()

		inTx(t, store, func(tx *sql.Tx) error {
			return deleteEntry(ctx, tx, registry, "ghost")
		})
	})

	t.Run("indexed but unmodeled type is a no-op", func(t *testing.T) {
		store := newTestStore(t)
		ctx := context.Background()

		inTx(t, store, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO entry_types (remote_id, type_id) VALUES ('e9', 'legacy')`)
			return err
		})

		inTx(t, store, func(tx *sql.Tx) error {
			return deleteEntry(ctx, tx, registry, "e9")
		})

		// The stale index row survives; nothing else to clean up.
		typeID, err := store.EntryTypeID(ctx, "e9")
		require.NoError(t, err)
		assert.Equal(t, "legacy", typeID)
	})
}
