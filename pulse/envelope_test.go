package pulse

import (
	"errors"
	"testing"

	"github.com/jbrzusto/tprocgo/tproc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPulseConst(t *testing.T) {
	ch := NewChannel(1)
	err := ch.RegisterPulse("flat", StyleConst, nil, nil, 100)
	require.NoError(t, err)
	env, name, ok := ch.Resolve("flat")
	require.True(t, ok)
	assert.Equal(t, "flat", name)
	assert.Equal(t, 0, env.BaseAddr)
	assert.Equal(t, 100, env.Length)
}

func TestRegisterPulseArbBumpPointer(t *testing.T) {
	// spec.md §8 "Channel-addr monotonicity"
	ch := NewChannel(2)
	i1 := make([]float64, 32)
	require.NoError(t, ch.RegisterPulse("a", StyleArb, i1, nil, 0))
	i2 := make([]float64, 16)
	require.NoError(t, ch.RegisterPulse("b", StyleArb, i2, nil, 0))

	envA, _, _ := ch.Resolve("a")
	envB, _, _ := ch.Resolve("b")
	assert.Equal(t, 0, envA.BaseAddr)
	assert.Equal(t, 32, envB.BaseAddr)
	assert.Equal(t, 48, ch.NextAddr)
	assert.Equal(t, 2, envA.Length) // 32/16 blocks
	assert.Equal(t, 1, envB.Length)
}

func TestRegisterPulseArbMisalignedLength(t *testing.T) {
	// spec.md §8 scenario 3
	ch := NewChannel(1)
	i := make([]float64, 15)
	q := make([]float64, 15)
	err := ch.RegisterPulse("p", StyleArb, i, q, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tproc.ErrEnvelopeLengthInvalid))
}

func TestRegisterPulseZeroFillsMissingChannel(t *testing.T) {
	ch := NewChannel(1)
	i := make([]float64, 16)
	require.NoError(t, ch.RegisterPulse("p", StyleArb, i, nil, 0))
	env, _, _ := ch.Resolve("p")
	assert.Len(t, env.QSamples, 16)
}

func TestRegisterPulseReplacesExisting(t *testing.T) {
	ch := NewChannel(1)
	i := make([]float64, 16)
	require.NoError(t, ch.RegisterPulse("p", StyleArb, i, nil, 0))
	require.NoError(t, ch.RegisterPulse("p", StyleConst, nil, nil, 50))
	env, _, _ := ch.Resolve("p")
	assert.Equal(t, StyleConst, env.Style)
}
