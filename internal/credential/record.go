// Package credential reads and writes the single account file holding the
// Google OAuth state. Two layouts exist in the wild: a nested form with a
// "token" object and an older flat form. Both normalize to Tokens, and a
// refreshed token is written back in whichever layout was read.
package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
)

// Schema identifies the physical layout of a Record.
type Schema int

const (
	SchemaFlat Schema = iota
	SchemaNested
)

func (s Schema) String() string {
	if s == SchemaNested {
		return "nested"
	}
	return "flat"
}

// DefaultExpiresIn applies to flat records that carry a timestamp but no
// expires_in.
const DefaultExpiresIn = 3600

// expiredLayout matches an ISO-8601 timestamp with a numeric UTC offset.
const expiredLayout = "2006-01-02T15:04:05-07:00"

// Tokens is the normalized view of a Record.
type Tokens struct {
	AccessToken     string
	RefreshToken    string
	ExpiryTimestamp *int64 // seconds since epoch
	ProjectID       string
	Schema          Schema
}

// Grant is a successful refresh response.
type Grant struct {
	AccessToken string
	ExpiresIn   int64
	TokenType   string
}

// Record is the decoded account file. Keys this package does not know about
// are kept so a rewrite does not lose them.
type Record struct {
	fields map[string]any
}

// Parse decodes data into a Record. Anything other than a JSON object is a
// parse error.
func Parse(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: account file: %v", errs.ErrParse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: account file is not a JSON object", errs.ErrParse)
	}
	return &Record{fields: fields}, nil
}

// Schema reports which layout the record uses.
func (r *Record) Schema() Schema {
	if _, ok := r.token(); ok {
		return SchemaNested
	}
	return SchemaFlat
}

func (r *Record) token() (map[string]any, bool) {
	tok, ok := r.fields["token"].(map[string]any)
	return tok, ok
}

// Normalize extracts the token fields from either layout.
//
// A flat record derives its expiry from the millisecond "timestamp" plus
// "expires_in" when a timestamp key is present. Only when that key is absent
// does an explicit "expiry_timestamp" apply.
func (r *Record) Normalize() Tokens {
	if tok, ok := r.token(); ok {
		return Tokens{
			AccessToken:     stringField(tok, "access_token"),
			RefreshToken:    stringField(tok, "refresh_token"),
			ExpiryTimestamp: intField(tok, "expiry_timestamp"),
			ProjectID:       stringField(tok, "project_id"),
			Schema:          SchemaNested,
		}
	}

	t := Tokens{
		AccessToken:  stringField(r.fields, "access_token"),
		RefreshToken: stringField(r.fields, "refresh_token"),
		ProjectID:    stringField(r.fields, "project_id"),
		Schema:       SchemaFlat,
	}
	if _, ok := r.fields["timestamp"]; ok {
		if ms := intField(r.fields, "timestamp"); ms != nil && *ms != 0 {
			expiresIn := int64(DefaultExpiresIn)
			if v := intField(r.fields, "expires_in"); v != nil {
				expiresIn = *v
			}
			expiry := *ms/1000 + expiresIn
			t.ExpiryTimestamp = &expiry
		}
	} else {
		t.ExpiryTimestamp = intField(r.fields, "expiry_timestamp")
	}
	return t
}

// ApplyRefresh writes g into the record using the layout it was read in, and
// updates the top-level access_token and "expired" fields read by other tools.
// It returns the new expiry in seconds since epoch.
func (r *Record) ApplyRefresh(g Grant, now time.Time) int64 {
	nowSec := now.Unix()
	expiry := nowSec + g.ExpiresIn

	if tok, ok := r.token(); ok {
		tokenType := g.TokenType
		if tokenType == "" {
			tokenType = "Bearer"
		}
		tok["access_token"] = g.AccessToken
		tok["expires_in"] = g.ExpiresIn
		tok["expiry_timestamp"] = expiry
		tok["token_type"] = tokenType
	} else {
		r.fields["access_token"] = g.AccessToken
		r.fields["expires_in"] = g.ExpiresIn
		r.fields["timestamp"] = nowSec * 1000
		r.fields["type"] = "antigravity"
	}

	r.fields["access_token"] = g.AccessToken
	r.fields["expired"] = time.Unix(expiry, 0).Local().Format(expiredLayout)
	return expiry
}

// get returns the raw value at the given key path, e.g. get("token",
// "access_token").
func (r *Record) get(path ...string) (any, bool) {
	var cur any = r.fields
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Encode renders the record as JSON with two-space indentation and without
// HTML escaping.
func (r *Record) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// intField reads an integral JSON number. Fractional values are truncated.
func intField(m map[string]any, key string) *int64 {
	var n int64
	switch v := m[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n = i
		} else if f, err := v.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			n = int64(f)
		} else {
			return nil
		}
	case float64:
		n = int64(v)
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return nil
	}
	return &n
}
