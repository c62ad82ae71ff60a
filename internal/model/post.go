package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Post is a single Mastodon post record parsed from one NDJSON line.
// Only the fields relevant to sentiment and activity analysis are kept;
// the rest of the (large) Mastodon API payload is discarded at decode time.
type Post struct {
	// CreatedAt is the post creation timestamp as found in the record.
	// Mastodon emits RFC 3339 timestamps, usually with a trailing "Z".
	CreatedAt string

	// Sentiment is the pre-computed sentiment score for the post.
	// Records without a sentiment field (or with a non-numeric value)
	// carry a score of zero rather than being rejected.
	Sentiment float64

	// UserID is the posting account's ID. Required for user aggregation.
	UserID string

	// Username is the posting account's username. Informational only;
	// the UserID is the aggregation key.
	Username string

	// Language is the ISO 639 language code of the post, if present.
	Language string

	// Reply is true if the post is a reply to another post.
	Reply bool

	// Reblog is true if the post is a boost of another post.
	Reblog bool

	// Favourites is the favourites count reported for the post.
	Favourites int64
}

// rawPost mirrors the subset of the Mastodon API payload we decode.
// Sentiment and account ID use loose types because real-world dumps
// contain both JSON numbers and strings for these fields.
type rawPost struct {
	CreatedAt       string          `json:"created_at"`
	Sentiment       json.RawMessage `json:"sentiment"`
	Account         rawAccount      `json:"account"`
	Language        string          `json:"language"`
	InReplyToID     json.RawMessage `json:"in_reply_to_id"`
	Reblog          json.RawMessage `json:"reblog"`
	FavouritesCount int64           `json:"favourites_count"`
}

// rawAccount mirrors the embedded account object.
type rawAccount struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
}

// ParsePost decodes a single NDJSON line into a Post.
// It returns an error only for malformed JSON; records with missing
// fields decode successfully and are filtered later via Valid.
//
// Design decision: We decode into a raw struct with json.RawMessage for
// fields whose JSON type varies across dumps (sentiment appears as both
// number and string, account IDs as both string and integer). A strict
// typed decode would reject a large fraction of real datasets.
func ParsePost(line []byte) (*Post, error) {
	var raw rawPost
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	return &Post{
		CreatedAt:  raw.CreatedAt,
		Sentiment:  looseFloat(raw.Sentiment),
		UserID:     looseString(raw.Account.ID),
		Username:   raw.Account.Username,
		Language:   raw.Language,
		Reply:      truthy(raw.InReplyToID),
		Reblog:     truthy(raw.Reblog),
		Favourites: raw.FavouritesCount,
	}, nil
}

// Valid reports whether the post carries the fields required for analysis.
// Posts without a creation timestamp or account ID cannot be bucketed
// and are skipped.
func (p *Post) Valid() bool {
	return p.CreatedAt != "" && p.UserID != ""
}

// Time parses the post's creation timestamp.
func (p *Post) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, p.CreatedAt)
}

// looseFloat interprets a raw JSON value as a float.
// JSON numbers are used directly; numeric strings are parsed.
// Anything else (null, objects, non-numeric strings) yields zero.
func looseFloat(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if unq, err := strconv.Unquote(s); err == nil {
		if v, err := strconv.ParseFloat(unq, 64); err == nil {
			return v
		}
	}
	return 0
}

// looseString interprets a raw JSON value as a string.
// JSON strings are unquoted; numbers are kept verbatim.
func looseString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}

// truthy reports whether a raw JSON value marks a real interaction.
// Mastodon uses null for in_reply_to_id and reblog on ordinary posts,
// but some dumps carry false, zero, or empty-string placeholders
// instead; those are not interactions either.
func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", "0.0", `""`:
		return false
	}
	return true
}
