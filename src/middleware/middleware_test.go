package middleware

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/Zillorz/svue-api/src/crypto"
	"github.com/Zillorz/svue-api/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const district = "md-mcps-psv.edupoint.com"

func setKey(t *testing.T) {
	t.Helper()
	t.Setenv("ENKEY", base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")))
}

func basicHeader(creds string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

func bearerHeader(t *testing.T, rec *models.SessionRecord) string {
	t.Helper()
	payload, err := json.Marshal(rec)
	require.NoError(t, err)
	token, err := crypto.CreateToken(string(payload))
	require.NoError(t, err)
	return "Bearer " + base64.StdEncoding.EncodeToString(token)
}

func TestMissingHeaderIsDistinctFromMalformed(t *testing.T) {
	_, err := RecordFromHeader("", district, time.Now())
	assert.ErrorIs(t, err, models.ErrEmptyCredentials)

	_, err = RecordFromHeader("Bearer", district, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestBasicMintsFreshRecord(t *testing.T) {
	now := time.Now()
	rec, err := RecordFromHeader(basicHeader("student:hunter2"), district, now)
	require.NoError(t, err)

	assert.Equal(t, "student", rec.Username)
	assert.Equal(t, "hunter2", rec.Password)
	assert.Nil(t, rec.Cookie)
	assert.Equal(t, district, rec.DistrictHost)

	// Expiry lands at now+24h.
	assert.False(t, rec.Expired(now.Add(23*time.Hour)))
	assert.True(t, rec.Expired(now.Add(25*time.Hour)))
}

func TestBasicPasswordMayContainColons(t *testing.T) {
	rec, err := RecordFromHeader(basicHeader("student:pass:word"), district, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "pass:word", rec.Password)
}

func TestBasicRejectsMalformed(t *testing.T) {
	_, err := RecordFromHeader("Basic !!!not-base64!!!", district, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = RecordFromHeader(basicHeader("no-colon-here"), district, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = RecordFromHeader(basicHeader(":password-only"), district, time.Now())
	assert.ErrorIs(t, err, models.ErrEmptyCredentials)
}

func TestBearerRoundTrip(t *testing.T) {
	setKey(t)

	cookie := "ASP.NET_SessionId=abc; "
	issued := &models.SessionRecord{
		Username:     "student",
		Password:     "hunter2",
		Cookie:       &cookie,
		Expiry:       models.NowMillis().Add(time.Hour),
		DistrictHost: district,
	}

	rec, err := RecordFromHeader(bearerHeader(t, issued), district, time.Now())
	require.NoError(t, err)
	assert.True(t, issued.Equal(rec))
}

func TestBearerExpiredIsDistinctFromInvalid(t *testing.T) {
	setKey(t)

	expired := &models.SessionRecord{
		Username:     "student",
		Password:     "hunter2",
		Expiry:       models.NowMillis().Add(-time.Hour),
		DistrictHost: district,
	}

	_, err := RecordFromHeader(bearerHeader(t, expired), district, time.Now())
	assert.ErrorIs(t, err, models.ErrExpiredToken)
	assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestBearerTamperedToken(t *testing.T) {
	setKey(t)

	issued := &models.SessionRecord{
		Username: "student", Password: "hunter2",
		Expiry: models.NowMillis().Add(time.Hour), DistrictHost: district,
	}
	header := bearerHeader(t, issued)

	raw, err := base64.StdEncoding.DecodeString(header[len("Bearer "):])
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = RecordFromHeader("Bearer "+base64.StdEncoding.EncodeToString(raw), district, time.Now())
	assert.ErrorIs(t, err, models.ErrTokenAuth)
}

func TestUnknownSchemeRejected(t *testing.T) {
	_, err := RecordFromHeader("Digest abcdef", district, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Scheme match is exact; lowercase forms are not accepted.
	_, err = RecordFromHeader(("basic ") + base64.StdEncoding.EncodeToString([]byte("u:p")), district, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
