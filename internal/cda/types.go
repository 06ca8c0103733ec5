package cda

// Kind is the resource type tag carried in a resource's sys block. The
// sync endpoint emits exactly four kinds: live assets and entries, plus
// deletion markers for each.
type Kind string

// Resource kinds as they appear on the wire.
const (
	KindAsset        Kind = "Asset"
	KindEntry        Kind = "Entry"
	KindDeletedAsset Kind = "DeletedAsset"
	KindDeletedEntry Kind = "DeletedEntry"
)

// Sys holds the system metadata common to every resource.
type Sys struct {
	ID          string    `json:"id"`
	Type        Kind      `json:"type"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
	ContentType *TypeLink `json:"contentType,omitempty"`
}

// TypeLink is the sys-wrapped content type reference on entries.
type TypeLink struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
}

// Resource is one item from a sync page. Fields is the raw localized
// field storage: field id -> locale -> value. Values are untyped JSON
// (string, bool, float64, []any, map[string]any).
type Resource struct {
	Sys    Sys                       `json:"sys"`
	Fields map[string]map[string]any `json:"fields"`
}

// ID returns the resource's remote identifier.
func (r *Resource) ID() string { return r.Sys.ID }

// ContentTypeID returns the entry's content type identifier, or "" for
// resources without one (assets, deletion markers).
func (r *Resource) ContentTypeID() string {
	if r.Sys.ContentType == nil {
		return ""
	}

	return r.Sys.ContentType.Sys.ID
}

// Field returns the raw value of a field for the given locale, or nil
// if the field or locale is absent.
func (r *Resource) Field(fieldID, locale string) any {
	byLocale, ok := r.Fields[fieldID]
	if !ok {
		return nil
	}

	return byLocale[locale]
}

// FieldMap returns a field's localized value as a map, or nil if the
// value is absent or not map-shaped.
func (r *Resource) FieldMap(fieldID, locale string) map[string]any {
	m, _ := r.Field(fieldID, locale).(map[string]any)
	return m
}

// FieldString returns a field's localized value as a string, or "" if
// the value is absent or not a string.
func (r *Resource) FieldString(fieldID, locale string) string {
	s, _ := r.Field(fieldID, locale).(string)
	return s
}

// syncPage mirrors the sync endpoint's response JSON. Unexported;
// callers receive an accumulated SyncSpace.
type syncPage struct {
	Items       []Resource `json:"items"`
	NextPageURL string     `json:"nextPageUrl"`
	NextSyncURL string     `json:"nextSyncUrl"`
}

// SyncSpace is the accumulated result of a full or delta sync: live
// resources split by kind, deletion markers reduced to bare ids, and
// the next-sync URL whose sync_token parameter seeds the next cycle.
type SyncSpace struct {
	Assets          []Resource
	Entries         []Resource
	DeletedAssetIDs []string
	DeletedEntryIDs []string
	NextSyncURL     string
}

// add dispatches one page of items into the space's per-kind buckets.
// Items with an unrecognized kind are dropped.
func (s *SyncSpace) add(items []Resource) {
	for i := range items {
		switch items[i].Sys.Type {
		case KindAsset:
			s.Assets = append(s.Assets, items[i])
		case KindEntry:
			s.Entries = append(s.Entries, items[i])
		case KindDeletedAsset:
			s.DeletedAssetIDs = append(s.DeletedAssetIDs, items[i].Sys.ID)
		case KindDeletedEntry:
			s.DeletedEntryIDs = append(s.DeletedEntryIDs, items[i].Sys.ID)
		}
	}
}
