package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func nullableStringValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableUint64Value(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtrFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// SerializeHeaders stores only the first value of every header, which is all
// the webhook verifier reads.
func SerializeHeaders(headers http.Header) (string, error) {
	flat := make(map[string]string, len(headers))
	for key := range headers {
		flat[http.CanonicalHeaderKey(key)] = headers.Get(key)
	}
	payload, err := json.Marshal(flat)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func ParseHeaders(raw string) (http.Header, error) {
	headers := http.Header{}
	if raw == "" {
		return headers, nil
	}
	var flat map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		return nil, err
	}
	for key, value := range flat {
		headers.Set(key, value)
	}
	return headers, nil
}
