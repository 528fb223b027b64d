package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Millis is a millisecond Unix timestamp. It marshals as a decimal JSON
// string because issued tokens carry the value as an unsigned 128-bit
// integer, which does not survive a round trip through a JSON number.
type Millis struct {
	v big.Int
}

// NowMillis returns the current wall-clock time as a Millis value.
func NowMillis() Millis {
	var m Millis
	m.v.SetInt64(time.Now().UnixMilli())
	return m
}

// Add returns a new Millis offset by the given duration.
func (m Millis) Add(d time.Duration) Millis {
	var out Millis
	out.v.Add(&m.v, big.NewInt(d.Milliseconds()))
	return out
}

// Before reports whether m is strictly earlier than the given instant.
func (m Millis) Before(t time.Time) bool {
	return m.v.Cmp(big.NewInt(t.UnixMilli())) < 0
}

func (m Millis) Equal(o Millis) bool {
	return m.v.Cmp(&o.v) == 0
}

func (m Millis) String() string {
	return m.v.String()
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.v.String())
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if _, ok := m.v.SetString(s, 10); !ok {
		return fmt.Errorf("invalid millisecond timestamp %q", s)
	}
	return nil
}

// SessionRecord is the decrypted payload of a bearer token: everything the
// gateway needs to act as one authenticated upstream session. It is never
// stored server-side; it lives for the duration of a single request and is
// re-issued to the client whenever the upstream service rotates its cookie.
type SessionRecord struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Cookie   *string `json:"cookie"`
	Expiry   Millis  `json:"expiry"`

	// Kept per-record so already-issued tokens stay valid if multi-district
	// support lands later.
	DistrictHost string `json:"district_url"`
}

// IsEmpty reports whether the record is missing either credential.
func (r *SessionRecord) IsEmpty() bool {
	return r.Username == "" || r.Password == ""
}

// Expired reports whether the record's expiry has passed the given instant.
func (r *SessionRecord) Expired(now time.Time) bool {
	return r.Expiry.Before(now)
}

// Equal compares two records field by field, including cookie contents.
func (r *SessionRecord) Equal(o *SessionRecord) bool {
	if r.Username != o.Username || r.Password != o.Password ||
		r.DistrictHost != o.DistrictHost || !r.Expiry.Equal(o.Expiry) {
		return false
	}
	if (r.Cookie == nil) != (o.Cookie == nil) {
		return false
	}
	return r.Cookie == nil || *r.Cookie == *o.Cookie
}

// Clone returns a deep copy, so a pre-request snapshot is unaffected by
// cookie updates applied during the upstream call.
func (r *SessionRecord) Clone() *SessionRecord {
	out := *r
	if r.Cookie != nil {
		c := *r.Cookie
		out.Cookie = &c
	}
	return &out
}
