package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/contentvault/vault-go/internal/vault"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync token state, locale, and row counts",
		RunE:  runStatus,
	}
}

// openStore converts the resolved model declarations into a schema registry
// and opens the database. Shared by the sync and status commands.
func openStore(logger *slog.Logger) (*vault.Store, *vault.Registry, error) {
	registry, err := resolvedCfg.Registry()
	if err != nil {
		return nil, nil, err
	}

	store, err := vault.Open(resolvedCfg.DBPath, registry, logger)
	if err != nil {
		return nil, nil, err
	}

	return store, registry, nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := buildLogger()

	store, registry, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	token, locale, err := store.SyncState(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	tokenState := "present"
	if token == "" {
		tokenState = "none (next sync is a full sync)"
		locale = resolvedCfg.Locale
	}

	fmt.Fprintf(w, "Database: %s\n", resolvedCfg.DBPath)
	fmt.Fprintf(w, "Token:    %s\n", tokenState)
	fmt.Fprintf(w, "Locale:   %s\n", locale)

	tables := []string{"assets", "links"}
	for _, m := range registry.Models() {
		tables = append(tables, m.Table)
	}

	for _, table := range tables {
		count, err := store.CountRows(ctx, table)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%-10s %d rows\n", table+":", count)
	}

	return nil
}
