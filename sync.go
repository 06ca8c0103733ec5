package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentvault/vault-go/internal/cda"
	"github.com/contentvault/vault-go/internal/vault"
)

func newSyncCmd() *cobra.Command {
	var flagInvalidate bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle against the delivery API",
		Long: `Fetch changes since the last sync and apply them to the local database.

The first run performs a full sync. Later runs send the stored continuation
token and receive only the delta. With --invalidate, local data and the
token are discarded first and a full sync is performed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flagInvalidate)
		},
	}

	cmd.Flags().BoolVar(&flagInvalidate, "invalidate", false, "discard local data and sync from scratch")

	return cmd
}

func runSync(cmd *cobra.Command, invalidate bool) error {
	logger := buildLogger()

	store, _, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := cda.NewClient(
		resolvedCfg.BaseURL,
		resolvedCfg.Space,
		resolvedCfg.Environment,
		defaultHTTPClient(),
		cda.StaticToken(resolvedCfg.AccessToken),
		logger,
	)

	v, err := vault.New(vault.Config{
		Store:   store,
		Fetcher: client,
		Locale:  resolvedCfg.Locale,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	res := v.Sync(cmd.Context(), vault.SyncOptions{Invalidate: invalidate})
	if res.Err != nil {
		return res.Err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sync complete (cycle %s)\n", res.CycleID)

	return nil
}
