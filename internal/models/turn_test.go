package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTurn(t *testing.T) {
	a := NewTurn(RoleUser, "hello")
	b := NewTurn(RoleAssistant, "hi")

	assert.Equal(t, RoleUser, a.Role)
	assert.Equal(t, "hello", a.Content)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
}
