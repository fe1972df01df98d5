package statemachine_test

import (
	"testing"

	"github.com/guyt101z/vumi-smpp-client/internal/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPathLifecycle(t *testing.T) {
	m := statemachine.New()
	assert.Equal(t, statemachine.Closed, m.State())
	assert.False(t, m.Allow(statemachine.OpSubmitSm))

	require.NoError(t, m.Connect())
	assert.Equal(t, statemachine.Open, m.State())
	assert.False(t, m.Allow(statemachine.OpEnquireLink))

	require.NoError(t, m.Bind())
	assert.Equal(t, statemachine.BoundTRx, m.State())
	assert.True(t, m.Allow(statemachine.OpSubmitSm))
	assert.True(t, m.Allow(statemachine.OpSubmitMulti))
	assert.True(t, m.Allow(statemachine.OpQuerySm))
	assert.True(t, m.Allow(statemachine.OpEnquireLink))

	m.Close()
	assert.Equal(t, statemachine.Closed, m.State())
	assert.False(t, m.Allow(statemachine.OpSubmitSm))
}

func TestIllegalTransitions(t *testing.T) {
	m := statemachine.New()
	err := m.Bind()
	assert.Error(t, err)
	assert.Equal(t, statemachine.Closed, m.State())

	require.NoError(t, m.Connect())
	err = m.Connect()
	assert.Error(t, err)
}

func TestCloseFromAnyStateIsAlwaysLegal(t *testing.T) {
	m := statemachine.New()
	m.Close()
	assert.Equal(t, statemachine.Closed, m.State())

	require.NoError(t, m.Connect())
	m.Close()
	assert.Equal(t, statemachine.Closed, m.State())
}
