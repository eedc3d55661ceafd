package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialValid(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Credential{}.Valid(now))
	assert.True(t, Credential{Token: "t"}.Valid(now))
	assert.True(t, Credential{Token: "t", ExpiresAt: now.Add(time.Minute)}.Valid(now))
	assert.False(t, Credential{Token: "t", ExpiresAt: now}.Valid(now))
}

func TestCredentialSameLogin(t *testing.T) {
	a := Credential{Token: "t1", Subject: "u1"}

	assert.True(t, a.SameLogin(Credential{Token: "t2", Subject: "u1"}), "refreshed token")
	assert.False(t, a.SameLogin(Credential{Token: "t1", Subject: "u2"}))
	assert.True(t, Credential{Token: "x"}.SameLogin(Credential{Token: "x"}))
	assert.False(t, Credential{Token: "x"}.SameLogin(Credential{Token: "y"}))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "guest", GuestActive.String())
	assert.Equal(t, "authenticated", AuthenticatedActive.String())
	assert.Equal(t, "uninitialized", Uninitialized.String())
}
