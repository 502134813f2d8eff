package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_BeginRejectsWhilePending(t *testing.T) {
	var r Runner

	epoch, err := r.Begin()
	require.NoError(t, err)
	assert.True(t, r.Pending())

	_, err = r.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	r.Done()
	assert.False(t, r.Pending())

	again, err := r.Begin()
	require.NoError(t, err)
	assert.Equal(t, epoch, again)
}

func TestRunner_InvalidateExpiresEpoch(t *testing.T) {
	var r Runner

	epoch, err := r.Begin()
	require.NoError(t, err)
	assert.True(t, r.Valid(epoch))

	r.Invalidate()
	assert.False(t, r.Valid(epoch))
	r.Done()

	next, err := r.Begin()
	require.NoError(t, err)
	assert.True(t, r.Valid(next))
	assert.NotEqual(t, epoch, next)
}
