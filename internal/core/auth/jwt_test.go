package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "review-api", TTL: time.Hour}

	token, err := j.Issue(42, "moderator", false)
	require.NoError(t, err)

	c, err := j.Parse(token)
	require.NoError(t, err)
	require.EqualValues(t, 42, c.UID)
	require.Equal(t, "moderator", c.Role)
	require.False(t, c.Superuser)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "review-api", TTL: time.Hour}
	other := &JWTer{Secret: []byte("different"), Issuer: "review-api", TTL: time.Hour}

	token, err := j.Issue(1, "user", false)
	require.NoError(t, err)
	_, err = other.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "someone-else", TTL: time.Hour}
	v := &JWTer{Secret: []byte("s3cret"), Issuer: "review-api", TTL: time.Hour}

	token, err := j.Issue(1, "user", false)
	require.NoError(t, err)
	_, err = v.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "review-api", TTL: -2 * time.Minute}

	token, err := j.Issue(1, "user", false)
	require.NoError(t, err)
	_, err = j.Parse(token)
	require.Error(t, err)
}

func TestSuperuserClaimSurvives(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "review-api", TTL: time.Hour}

	token, err := j.Issue(9, "user", true)
	require.NoError(t, err)
	c, err := j.Parse(token)
	require.NoError(t, err)
	require.True(t, c.Superuser)
}
