package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// Pagination binds the shared query parameters for list endpoints.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// PageInfo is embedded in list responses to carry the follow-up token.
type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Limit clamps the requested page size to sane bounds.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return defaultPageSize
	}
	if p.PageSize > maxPageSize {
		return maxPageSize
	}
	return p.PageSize
}

// Offset decodes the page token back into a row offset. Malformed tokens are
// treated as the first page rather than an error.
func (p Pagination) Offset() int {
	token := strings.TrimSpace(p.PageToken)
	if token == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// NextToken encodes the offset of the next page, or "" when the current page
// was short (no further rows).
func NextToken(offset, limit, fetched int) string {
	if fetched < limit {
		return ""
	}
	next := strconv.Itoa(offset + fetched)
	return base64.RawURLEncoding.EncodeToString([]byte(next))
}
