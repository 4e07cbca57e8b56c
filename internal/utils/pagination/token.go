// Package pagination implements opaque cursor tokens for keyset pagination.
// A token encodes the (created_at, id) pair of the last row of a page; the
// next query resumes strictly after that row.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const tokenSeparator = "|"

// EncodeToken builds an opaque pagination token from the cursor row's
// creation time and identifier.
func EncodeToken(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + tokenSeparator + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeToken parses a token produced by EncodeToken back into its cursor
// values.
func DecodeToken(token string) (time.Time, string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token encoding: %w", err)
	}

	parts := strings.SplitN(string(raw), tokenSeparator, 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("malformed pagination token")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token timestamp: %w", err)
	}

	return createdAt, parts[1], nil
}
