package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public(t *testing.T) {
	user := &User{
		ID:           "user-abc",
		Nome:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "$argon2id$...",
	}

	pub := user.Public()

	assert.Equal(t, "user-abc", pub.ID)
	assert.Equal(t, "Maria", pub.Nome)
	assert.Equal(t, "maria@example.com", pub.Email)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	user := &User{
		ID:           "user-abc",
		Nome:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "$argon2id$super-secret",
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "super-secret")
	assert.NotContains(t, string(data), "password")
}
