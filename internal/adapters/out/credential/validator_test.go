package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessiondom "storefront/internal/domain/session"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, build func(tok jwt.Token)) string {
	t.Helper()
	tok := jwt.New()
	build(tok)
	b, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("backend-secret")))
	require.NoError(t, err)
	return string(b)
}

func TestJWTValidator(t *testing.T) {
	ctx := context.Background()
	v := NewJWTValidatorWithClock(func() time.Time { return testNow })

	t.Run("Subject and expiry", func(t *testing.T) {
		raw := signedToken(t, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.SubjectKey, "shopper@example.com"))
			require.NoError(t, tok.Set(jwt.ExpirationKey, testNow.Add(time.Hour)))
		})

		cred, err := v.Validate(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "shopper@example.com", cred.Subject)
		assert.Equal(t, raw, cred.Token)
		assert.True(t, cred.ExpiresAt.Equal(testNow.Add(time.Hour)))
		assert.True(t, cred.Valid(testNow))
	})

	t.Run("Falls back to the id claim", func(t *testing.T) {
		raw := signedToken(t, func(tok jwt.Token) {
			require.NoError(t, tok.Set("id", 17))
		})

		cred, err := v.Validate(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "17", cred.Subject)
		assert.True(t, cred.ExpiresAt.IsZero())
	})

	t.Run("Expired", func(t *testing.T) {
		raw := signedToken(t, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.SubjectKey, "u1"))
			require.NoError(t, tok.Set(jwt.ExpirationKey, testNow.Add(-time.Hour)))
		})

		_, err := v.Validate(ctx, raw)
		assert.ErrorIs(t, err, sessiondom.ErrExpiredCredential)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
			_, err := v.Validate(ctx, raw)
			assert.ErrorIs(t, err, sessiondom.ErrInvalidCredential, raw)
		}
	})
}

type mockVerifier struct {
	token *fbauth.Token
	err   error
}

func (m *mockVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return m.token, m.err
}

func TestFirebaseValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("Verified token", func(t *testing.T) {
		exp := testNow.Add(time.Hour).Unix()
		v := NewFirebaseValidator(&mockVerifier{token: &fbauth.Token{UID: "uid-1", Expires: exp}})

		cred, err := v.Validate(ctx, " id-token ")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", cred.Subject)
		assert.Equal(t, "id-token", cred.Token)
		assert.Equal(t, exp, cred.ExpiresAt.Unix())
	})

	t.Run("Rejected token", func(t *testing.T) {
		v := NewFirebaseValidator(&mockVerifier{err: errors.New("signature mismatch")})
		_, err := v.Validate(ctx, "id-token")
		assert.ErrorIs(t, err, sessiondom.ErrInvalidCredential)
	})

	t.Run("Missing uid", func(t *testing.T) {
		v := NewFirebaseValidator(&mockVerifier{token: &fbauth.Token{}})
		_, err := v.Validate(ctx, "id-token")
		assert.ErrorIs(t, err, sessiondom.ErrInvalidCredential)
	})

	t.Run("Not configured", func(t *testing.T) {
		_, err := NewFirebaseValidator(nil).Validate(ctx, "id-token")
		assert.ErrorIs(t, err, sessiondom.ErrValidatorUnavailable)
	})
}
