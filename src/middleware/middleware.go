package middleware

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Zillorz/svue-api/src/crypto"
	"github.com/Zillorz/svue-api/src/models"
	"github.com/Zillorz/svue-api/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKey  = "session_record"
	snapshotKey = "session_snapshot"
)

// SessionAuth decodes the Authorization header into a session record and
// stores it (plus a pre-request snapshot) in the request context. This is
// the only place credential emptiness and token expiry are enforced.
func SessionAuth(districtHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := RecordFromHeader(c.GetHeader("Authorization"), districtHost, time.Now())
		if err != nil {
			utils.ReplyError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionKey, rec)
		c.Set(snapshotKey, rec.Clone())
		c.Next()
	}
}

// Session returns the request's session record and its pre-request
// snapshot. Only valid after SessionAuth ran.
func Session(c *gin.Context) (*models.SessionRecord, *models.SessionRecord) {
	return c.MustGet(sessionKey).(*models.SessionRecord),
		c.MustGet(snapshotKey).(*models.SessionRecord)
}

// RecordFromHeader accepts two credential forms: Basic (literal
// username:password, minting a fresh 24h record against the configured
// district) and Bearer (an encrypted, previously-issued record).
func RecordFromHeader(header, districtHost string, now time.Time) (*models.SessionRecord, error) {
	if header == "" {
		return nil, models.ErrEmptyCredentials
	}

	scheme, contents, found := strings.Cut(header, " ")
	if !found {
		return nil, models.ErrInvalidCredentials
	}

	switch scheme {
	case "Bearer":
		token, err := base64.StdEncoding.DecodeString(contents)
		if err != nil {
			return nil, models.ErrInvalidCredentials
		}

		plaintext, err := crypto.DecryptToken(token)
		if err != nil {
			return nil, err
		}

		var rec models.SessionRecord
		if err := json.Unmarshal([]byte(plaintext), &rec); err != nil {
			return nil, models.ErrInvalidCredentials
		}

		if rec.Expired(now) {
			return nil, models.ErrExpiredToken
		}
		if rec.IsEmpty() {
			return nil, models.ErrEmptyCredentials
		}
		return &rec, nil

	case "Basic":
		decoded, err := base64.StdEncoding.DecodeString(contents)
		if err != nil || !utf8.Valid(decoded) {
			return nil, models.ErrInvalidCredentials
		}

		username, password, found := strings.Cut(string(decoded), ":")
		if !found {
			return nil, models.ErrInvalidCredentials
		}

		rec := &models.SessionRecord{
			Username:     username,
			Password:     password,
			Cookie:       nil,
			Expiry:       models.NowMillis().Add(24 * time.Hour),
			DistrictHost: districtHost,
		}
		if rec.IsEmpty() {
			return nil, models.ErrEmptyCredentials
		}
		return rec, nil

	default:
		return nil, models.ErrInvalidCredentials
	}
}

// RequestID tags every request with a correlation ID, echoed back in the
// X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
