package models

import (
	"net/url"
	"strings"
	"time"
)

// TransactionFilter narrows a transaction list query. Type is required;
// the date bounds are optional.
type TransactionFilter struct {
	Type    TransactionType
	StartAt *time.Time
	EndAt   *time.Time
}

// Key returns the canonical cache key for the filter. Equal filters always
// produce equal keys, so cached list queries de-duplicate correctly.
func (f TransactionFilter) Key() string {
	var b strings.Builder
	b.WriteString("type=")
	b.WriteString(string(f.Type))
	if f.StartAt != nil {
		b.WriteString("&startAt=")
		b.WriteString(f.StartAt.UTC().Format(time.RFC3339))
	}
	if f.EndAt != nil {
		b.WriteString("&endAt=")
		b.WriteString(f.EndAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// Query renders the filter as request query parameters.
func (f TransactionFilter) Query() url.Values {
	q := url.Values{}
	q.Set("type", string(f.Type))
	if f.StartAt != nil {
		q.Set("startAt", f.StartAt.UTC().Format(time.RFC3339))
	}
	if f.EndAt != nil {
		q.Set("endAt", f.EndAt.UTC().Format(time.RFC3339))
	}
	return q
}
