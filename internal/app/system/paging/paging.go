// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of items per page.
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 100

const cursorName = "cursor"

// CursorTTL is how long an issued cursor stays valid.
const CursorTTL = 24 * time.Hour

// ParseLimit reads the "limit" query parameter, clamped to 1..MaxPageSize.
// Missing or invalid values yield PageSize.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Cursors encodes keyset cursors and signs them so clients cannot forge
// positions. A nil *Cursors falls back to unsigned cursors.
type Cursors struct {
	codec *securecookie.SecureCookie
}

// NewCursors returns a signer keyed by hashKey (32 or 64 bytes recommended)
// whose cursors expire after CursorTTL.
func NewCursors(hashKey []byte) *Cursors {
	return NewCursorsWithTTL(hashKey, CursorTTL)
}

// NewCursorsWithTTL is NewCursors with an explicit lifetime, rounded down to
// whole seconds (minimum one second).
func NewCursorsWithTTL(hashKey []byte, ttl time.Duration) *Cursors {
	secs := int(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(secs)
	return &Cursors{codec: sc}
}

// Encode returns an opaque cursor for the (key, id) position.
func (c *Cursors) Encode(key string, id primitive.ObjectID) string {
	raw := wafflemongo.EncodeCursor(key, id)
	if c == nil || c.codec == nil {
		return raw
	}
	signed, err := c.codec.Encode(cursorName, raw)
	if err != nil {
		return ""
	}
	return signed
}

// Decode verifies and decodes a cursor produced by Encode.
func (c *Cursors) Decode(s string) (*wafflemongo.Cursor, bool) {
	raw := s
	if c != nil && c.codec != nil {
		if err := c.codec.Decode(cursorName, s, &raw); err != nil {
			return nil, false
		}
	}
	cur, ok := wafflemongo.DecodeCursor(raw)
	if !ok {
		return nil, false
	}
	return &cur, true
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // ascending, cursor compared with "gt"
	Backward                  // descending, cursor compared with "lt"
)

// KeysetConfig is the decoded paging request.
type KeysetConfig struct {
	Direction Direction
	SortOrder int
	Limit     int
	Cursor    *wafflemongo.Cursor
	// Invalid is set when a cursor was supplied but failed verification.
	Invalid bool
}

// Configure decodes before/after cursors. before wins when both are set.
func (c *Cursors) Configure(before, after string, limit int) KeysetConfig {
	if limit <= 0 {
		limit = PageSize
	}
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1, Limit: limit}

	tok := after
	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		tok = before
	}
	if tok != "" {
		cur, ok := c.Decode(tok)
		if !ok {
			cfg.Invalid = true
		}
		cfg.Cursor = cur
	}
	return cfg
}

// FromRequest reads "before", "after" and "limit" from the query string.
func (c *Cursors) FromRequest(r *http.Request) KeysetConfig {
	return c.Configure(query.Get(r, "before"), query.Get(r, "after"), ParseLimit(r))
}

// ApplyToFind sets sort and a look-ahead limit of Limit+1.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(int64(cfg.Limit + 1))
}

// KeysetWindow returns the cursor condition, or nil without a cursor.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Page describes the neighbours of a returned page.
type Page struct {
	HasPrev bool   `json:"hasPrev"`
	HasNext bool   `json:"hasNext"`
	Prev    string `json:"prev,omitempty"`
	Next    string `json:"next,omitempty"`
}

// Finish trims the look-ahead row, restores display order when paging
// backwards, and builds the neighbour cursors.
func Finish[T any](c *Cursors, cfg KeysetConfig, rows *[]T, keyFn func(T) string, idFn func(T) primitive.ObjectID) Page {
	var p Page
	n := len(*rows)

	if cfg.Direction == Backward {
		if n > cfg.Limit {
			*rows = (*rows)[:cfg.Limit]
			p.HasPrev = true
		}
		Reverse(*rows)
		p.HasNext = true
	} else {
		if n > cfg.Limit {
			*rows = (*rows)[:cfg.Limit]
			p.HasNext = true
		}
		p.HasPrev = cfg.Cursor != nil
	}

	if len(*rows) == 0 {
		return Page{}
	}
	first, last := (*rows)[0], (*rows)[len(*rows)-1]
	if p.HasPrev {
		p.Prev = c.Encode(keyFn(first), idFn(first))
	}
	if p.HasNext {
		p.Next = c.Encode(keyFn(last), idFn(last))
	}
	return p
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
