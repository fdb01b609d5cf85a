package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDelete(t *testing.T) {
	st := NewStore(time.Hour)

	s := st.Create()
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Count())

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrSessionNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	st := NewStore(time.Hour)
	a, b := st.Create(), st.Create()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, st.Count())

	st.Close()
	assert.Zero(t, st.Count())
}

func TestIdleSessionsExpire(t *testing.T) {
	st := NewStore(50 * time.Millisecond)
	s := st.Create()

	// polling with Get would keep the session alive, so wait for the janitor
	assert.Eventually(t, func() bool {
		return st.Count() == 0
	}, 5*time.Second, 50*time.Millisecond)

	_, err := st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
