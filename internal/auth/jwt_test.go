package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", "bookshelf", time.Hour)
	user := &entities.User{ID: 42, Role: entities.UserRoleAdmin}

	token, expiresAt, err := manager.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, entities.UserRoleAdmin, claims.Role)
}

func TestJWTManager_RejectsWrongSecretAndIssuer(t *testing.T) {
	user := &entities.User{ID: 1, Role: entities.UserRoleMember}
	token, _, err := NewJWTManager("secret", "bookshelf", time.Hour).GenerateToken(user)
	require.NoError(t, err)

	_, err = NewJWTManager("other", "bookshelf", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTManager("secret", "someone-else", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTManager("secret", "bookshelf", time.Hour).ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", "bookshelf", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := manager.GenerateToken(&entities.User{ID: 1})
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "bookshelf"}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", "bookshelf", time.Hour).ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_UserIDRejectsBadSubject(t *testing.T) {
	_, err := (&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}).UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = (&Claims{}).UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
