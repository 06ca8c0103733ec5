package vault

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/contentvault/vault-go/internal/cda"
)

// Config holds the collaborators for one vault.
type Config struct {
	Store   *Store
	Fetcher Fetcher
	Locale  string // active locale for field extraction; "" uses the space default
	Logger  *slog.Logger
}

// Vault coordinates sync cycles against one local store. At most one
// cycle runs at a time; concurrent Sync calls are rejected with
// ErrSyncInProgress rather than interleaved.
type Vault struct {
	store    *Store
	fetcher  Fetcher
	locale   string
	logger   *slog.Logger
	notifier *notifier

	running sync.Mutex
}

// New creates a Vault from its collaborators.
func New(cfg Config) (*Vault, error) {
	if cfg.Store == nil {
		return nil, errors.New("vault: config has no store")
	}

	if cfg.Fetcher == nil {
		return nil, errors.New("vault: config has no fetcher")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Vault{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		locale:   cfg.Locale,
		logger:   logger,
		notifier: newNotifier(logger),
	}, nil
}

// Subscribe registers a channel receiving every cycle's SyncResult.
// The returned cancel function closes the channel.
func (v *Vault) Subscribe() (<-chan SyncResult, func()) {
	return v.notifier.subscribe()
}

// RegisterCallback associates a callback with a tag. A Sync request
// carrying that tag invokes the callback with its result, success or
// failure. A nil fn removes the registration.
func (v *Vault) RegisterCallback(tag string, fn Callback) {
	v.notifier.registerCallback(tag, fn)
}

// SyncOptions control one sync request.
type SyncOptions struct {
	// Invalidate clears all local state before syncing, forcing a
	// full (tokenless) sync.
	Invalidate bool

	// Tag selects the callback notified with this request's result.
	Tag string
}

// Sync runs one sync cycle: fetch the delta since the stored token (or
// the full space), apply deletions and upserts atomically, and persist
// the next continuation token. The result is returned and also
// delivered to all subscribers and the tag callback, regardless of
// outcome. If a cycle is already running the request is rejected with
// ErrSyncInProgress and nothing is notified.
func (v *Vault) Sync(ctx context.Context, opts SyncOptions) SyncResult {
	if !v.running.TryLock() {
		return SyncResult{Err: ErrSyncInProgress}
	}
	defer v.running.Unlock()

	cycleID := uuid.NewString()
	logger := v.logger.With(slog.String("cycle_id", cycleID))
	started := time.Now()

	res := SyncResult{CycleID: cycleID}
	if err := v.runCycle(ctx, logger, opts); err != nil {
		res.Err = &SyncFailure{Err: err}
		logger.Error("sync cycle failed", slog.String("error", err.Error()))
	} else {
		logger.Info("sync cycle committed", slog.Duration("elapsed", time.Since(started)))
	}

	v.notifier.publish(res, opts.Tag)

	return res
}

// runCycle executes one cycle. Any returned error means the cycle's
// transaction was rolled back in full.
func (v *Vault) runCycle(ctx context.Context, logger *slog.Logger, opts SyncOptions) error {
	var token string

	if opts.Invalidate {
		logger.Info("invalidation requested, clearing local cache")

		if err := v.store.clearRecords(ctx); err != nil {
			return &StorageError{Op: "invalidate", Err: err}
		}
	} else {
		tok, err := v.validToken(ctx, logger)
		if err != nil {
			return err
		}

		token = tok
	}

	if token != "" {
		// Idempotent guard: re-validate the locale immediately before
		// the delta fetch.
		tok, err := v.validToken(ctx, logger)
		if err != nil {
			return err
		}

		token = tok
	}

	space, err := v.fetcher.Sync(ctx, token)
	if err != nil {
		return &FetchError{Err: err}
	}

	nextToken, err := cda.TokenFromURL(space.NextSyncURL)
	if err != nil {
		return &FetchError{Err: err}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	if err := v.applyDeletions(ctx, tx, space); err != nil {
		return err
	}

	if err := v.applyUpserts(ctx, tx, logger, space); err != nil {
		return err
	}

	// Replace the sync_info row wholesale: token and locale move
	// together with the data they describe.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_info`); err != nil {
		return &StorageError{Op: "save sync info", Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_info (token, locale) VALUES (?, ?)`, nextToken, v.locale); err != nil {
		return &StorageError{Op: "save sync info", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}

	return nil
}

// validToken reads the stored continuation token, invalidating all
// local state first if the stored locale no longer matches the
// configured one. Field values are locale-specific snapshots, so a
// locale change makes every cached row stale.
func (v *Vault) validToken(ctx context.Context, logger *slog.Logger) (string, error) {
	token, storedLocale, err := v.store.SyncState(ctx)
	if err != nil {
		return "", &StorageError{Op: "read sync state", Err: err}
	}

	if token == "" {
		return "", nil
	}

	if !sameLocale(storedLocale, v.locale) {
		logger.Info("locale changed, invalidating local cache",
			slog.String("stored", storedLocale),
			slog.String("configured", v.locale),
		)

		if err := v.store.clearRecords(ctx); err != nil {
			return "", &StorageError{Op: "locale invalidate", Err: err}
		}

		return "", nil
	}

	return token, nil
}

// sameLocale compares two locale identifiers, canonicalizing well-formed
// BCP 47 tags first so case or formatting differences do not trigger a
// spurious full invalidation.
func sameLocale(a, b string) bool {
	if a == b {
		return true
	}

	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)

	if errA != nil || errB != nil {
		return false
	}

	return ta == tb
}

// applyDeletions removes deleted resources, assets then entries. Link
// cleanup happens here, before any new links for re-created ids are
// written.
func (v *Vault) applyDeletions(ctx context.Context, tx *sql.Tx, space *cda.SyncSpace) error {
	for _, id := range space.DeletedAssetIDs {
		if err := deleteAsset(ctx, tx, id); err != nil {
			return &StorageError{Op: "delete asset", Err: err}
		}
	}

	for _, id := range space.DeletedEntryIDs {
		if err := deleteEntry(ctx, tx, v.store.registry, id); err != nil {
			return &StorageError{Op: "delete entry", Err: err}
		}
	}

	return nil
}

// applyUpserts writes fetched resources, assets then entries. Entries
// whose content type has no registered model are skipped; local schema
// is not required to mirror every remote content type.
func (v *Vault) applyUpserts(ctx context.Context, tx *sql.Tx, logger *slog.Logger, space *cda.SyncSpace) error {
	w := &resourceWriter{tx: tx, locale: v.locale, logger: logger}

	for i := range space.Assets {
		if err := w.writeAsset(ctx, &space.Assets[i]); err != nil {
			return classifyWriteErr(err)
		}
	}

	var skipped int

	for i := range space.Entries {
		entry := &space.Entries[i]
		typeID := entry.ContentTypeID()

		table, ok := v.store.registry.ResolveTable(typeID)
		if !ok {
			logger.Debug("skipping entry with unregistered content type",
				slog.String("entry_id", entry.ID()),
				slog.String("content_type", typeID),
			)

			skipped++

			continue
		}

		fields, _ := v.store.registry.ResolveFields(typeID)

		if err := w.writeEntry(ctx, entry, table, fields); err != nil {
			return classifyWriteErr(err)
		}
	}

	if skipped > 0 {
		logger.Info("skipped entries with unregistered content types", slog.Int("count", skipped))
	}

	return nil
}

// classifyWriteErr keeps typed encoding errors and wraps everything
// else as a storage failure.
func classifyWriteErr(err error) error {
	var encErr *EncodingError
	if errors.As(err, &encErr) {
		return err
	}

	return &StorageError{Op: "apply", Err: err}
}

