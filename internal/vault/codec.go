package vault

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// encodeBlob serializes a raw field value to its BLOB storage form
// (canonical JSON). Values come straight from the API payload, so this
// only fails on the pathological cases json.Marshal rejects; the
// failure is fatal for the enclosing resource write.
func encodeBlob(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("serializing to blob: %w", err)
	}

	return b, nil
}

// encodeBool encodes a raw boolean field value as "1" or "0". Anything
// other than an explicit true (nil, false, wrong type) encodes as "0".
func encodeBool(value any) string {
	if b, ok := value.(bool); ok && b {
		return "1"
	}

	return "0"
}

// encodeScalar encodes any other scalar as its string form, or NULL
// when the value is absent.
func encodeScalar(value any) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: fmt.Sprintf("%v", value), Valid: true}
}
