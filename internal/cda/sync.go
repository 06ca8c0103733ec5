package cda

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// syncTokenParam is the query parameter carrying the continuation token
// in next-page and next-sync URLs.
const syncTokenParam = "sync_token"

// Sync fetches all pages of sync results and returns the accumulated
// space. An empty token requests a full space sync; a non-empty token
// requests the delta since that token. The returned space's
// NextSyncURL carries the token for the following cycle.
func (c *Client) Sync(ctx context.Context, token string) (*SyncSpace, error) {
	c.logger.Info("starting sync enumeration",
		slog.String("space", c.space),
		slog.Bool("initial", token == ""),
	)

	query := url.Values{}
	if token == "" {
		query.Set("initial", "true")
	} else {
		query.Set(syncTokenParam, token)
	}

	space := &SyncSpace{}
	path := c.spacePath("sync")
	pages := 0

	for {
		var page syncPage
		if err := c.getJSON(ctx, path, query, &page); err != nil {
			return nil, err
		}

		space.add(page.Items)
		pages++

		c.logger.Debug("fetched sync page",
			slog.Int("page", pages),
			slog.Int("items", len(page.Items)),
			slog.Bool("has_next_page", page.NextPageURL != ""),
		)

		if page.NextPageURL == "" {
			space.NextSyncURL = page.NextSyncURL

			c.logger.Info("sync enumeration complete",
				slog.Int("pages", pages),
				slog.Int("assets", len(space.Assets)),
				slog.Int("entries", len(space.Entries)),
				slog.Int("deleted_assets", len(space.DeletedAssetIDs)),
				slog.Int("deleted_entries", len(space.DeletedEntryIDs)),
			)

			return space, nil
		}

		// Subsequent pages are addressed by the page token from the
		// next-page URL, not the original query.
		pageToken, err := TokenFromURL(page.NextPageURL)
		if err != nil {
			return nil, fmt.Errorf("cda: invalid next-page URL: %w", err)
		}

		query = url.Values{}
		query.Set(syncTokenParam, pageToken)
	}
}

// TokenFromURL extracts the sync_token query parameter from a next-page
// or next-sync URL. A URL without the parameter yields "", which callers
// treat as "full sync required".
func TokenFromURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("cda: parsing sync URL: %w", err)
	}

	return u.Query().Get(syncTokenParam), nil
}
