package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternAssignsStableIDs(t *testing.T) {
	in := NewInterner()

	id1 := in.Intern("BTC/USD")
	id2 := in.Intern("BTC/USD")
	require.Equal(t, id1, id2)
	assert.NotEqual(t, Invalid, id1)

	id3 := in.Intern("ETH/USD")
	assert.NotEqual(t, id1, id3)
}

func TestInternFoldsCaseAndWidth(t *testing.T) {
	in := NewInterner()

	lower := in.Intern("btc/usd")
	upper := in.Intern("BTC/USD")
	assert.Equal(t, lower, upper)
}

func TestLookupReturnsFirstSeenSpelling(t *testing.T) {
	in := NewInterner()

	id := in.Intern("btc/usd")
	in.Intern("BTC/USD")

	got, ok := in.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, Symbol("btc/usd"), got)
}

func TestLookupUnknownIDFails(t *testing.T) {
	in := NewInterner()
	in.Intern("BTC/USD")

	_, ok := in.Lookup(ID(99))
	assert.False(t, ok)

	_, ok = in.Lookup(Invalid)
	assert.False(t, ok)
}

func TestLenCountsDistinctSymbols(t *testing.T) {
	in := NewInterner()
	assert.Equal(t, 0, in.Len())

	in.Intern("BTC/USD")
	in.Intern("btc/usd")
	in.Intern("ETH/USD")

	assert.Equal(t, 2, in.Len())
}
