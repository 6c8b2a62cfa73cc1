package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locar77i/wirekrak/internal/symbol"
)

const (
	btc symbol.ID = 1
	eth symbol.ID = 2
)

func TestRegisterSubscriptionThenAckActivatesSymbol(t *testing.T) {
	m := NewManager(nil)

	added := m.RegisterSubscription([]symbol.ID{btc}, 1)
	assert.Equal(t, []symbol.ID{btc}, added)

	require.True(t, m.ProcessSubscribeAck(1, btc, true))
	assert.True(t, m.IsActive(btc))
	require.NoError(t, m.CheckInvariants())
}

func TestRegisterSubscriptionIsIdempotentForActiveSymbol(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)
	m.ProcessSubscribeAck(1, btc, true)

	added := m.RegisterSubscription([]symbol.ID{btc}, 2)
	assert.Empty(t, added)
}

func TestRegisterSubscriptionCancelsPendingUnsubscribe(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)
	m.ProcessSubscribeAck(1, btc, true)

	moved := m.RegisterUnsubscription([]symbol.ID{btc}, 2)
	require.Equal(t, []symbol.ID{btc}, moved)
	assert.False(t, m.IsActive(btc))

	added := m.RegisterSubscription([]symbol.ID{btc}, 3)
	assert.Empty(t, added) // filtered out, not re-added to pending_subscribe
	assert.True(t, m.IsActive(btc))
	require.NoError(t, m.CheckInvariants())
}

func TestSubscribeAckFailureDropsSymbolPermanently(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)

	require.True(t, m.ProcessSubscribeAck(1, btc, false))
	assert.False(t, m.IsActive(btc))

	// Re-subscribing is now allowed since nothing references it anymore.
	added := m.RegisterSubscription([]symbol.ID{btc}, 2)
	assert.Equal(t, []symbol.ID{btc}, added)
}

func TestUnsubscribeAckFailureKeepsSymbolActive(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)
	m.ProcessSubscribeAck(1, btc, true)
	m.RegisterUnsubscription([]symbol.ID{btc}, 2)

	require.True(t, m.ProcessUnsubscribeAck(2, btc, false))
	assert.True(t, m.IsActive(btc))
	require.NoError(t, m.CheckInvariants())
}

func TestUnknownReqIDAckIsIgnored(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)

	assert.False(t, m.ProcessSubscribeAck(99, btc, true))
	assert.False(t, m.IsActive(btc))
}

func TestTryProcessRejectionOnPendingSubscribe(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc, eth}, 1)

	require.True(t, m.TryProcessRejection(1, eth))
	assert.False(t, m.IsActive(eth))

	require.True(t, m.ProcessSubscribeAck(1, btc, true))
	assert.True(t, m.IsActive(btc))
}

func TestDropRequestRemovesWholeRequestAcrossBothSets(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)
	m.ProcessSubscribeAck(1, btc, true)
	m.RegisterUnsubscription([]symbol.ID{btc}, 2)
	m.RegisterSubscription([]symbol.ID{eth}, 3)

	removed := m.DropRequest(2)
	assert.ElementsMatch(t, []symbol.ID{btc}, removed)
	assert.True(t, m.IsActive(btc)) // unsubscribe request dropped -> stays active

	removed = m.DropRequest(3)
	assert.ElementsMatch(t, []symbol.ID{eth}, removed)
	assert.False(t, m.IsActive(eth))
	require.NoError(t, m.CheckInvariants())
}

func TestClearAllResetsEverything(t *testing.T) {
	m := NewManager(nil)
	m.RegisterSubscription([]symbol.ID{btc}, 1)
	m.ProcessSubscribeAck(1, btc, true)
	m.RegisterSubscription([]symbol.ID{eth}, 2)

	m.ClearAll()
	assert.False(t, m.IsActive(btc))
	assert.Empty(t, m.ActiveSymbols())
	require.NoError(t, m.CheckInvariants())
}
