package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fgo-harvest/internal/resilience"
)

func TestDetailStates(t *testing.T) {
	var zero Detail[Leveling]
	assert.True(t, zero.IsPending())

	p := Populated(Leveling{Enhancement: "none"})
	assert.True(t, p.IsPopulated())
	assert.False(t, p.IsRetryable())
	assert.False(t, p.IsTerminal())

	r := Retryable[Leveling]("/skill/a", 500)
	assert.True(t, r.IsRetryable())
	assert.False(t, r.IsTerminal())
	assert.Equal(t, "/skill/a", r.Failure.Ref)

	term := Terminal[Leveling](resilience.TagNotFound, 503)
	assert.True(t, term.IsTerminal())
	assert.False(t, term.IsRetryable())
}

func TestDetailJSONShape(t *testing.T) {
	d := Retryable[RawStats]("https://example.com/servant/a", 0)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"failed","failure":{"kind":"retryable","ref":"https://example.com/servant/a"}}`, string(b))

	var back Detail[RawStats]
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.IsRetryable())
}

func TestLevelStatsGapsMarshalAsNull(t *testing.T) {
	a, c := 50, 120
	b, err := json.Marshal(LevelStats{Attack: []*int{&a, nil, &c}, HP: []*int{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"attack":[50,null,120],"hp":[]}`, string(b))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Mana Burst A", NormalizeName("  Mana\tBurst   A \n"))
	// Decomposed e + combining acute composes to a single rune.
	assert.Equal(t, "Caf\u00e9", NormalizeName("Cafe\u0301"))
}
