package pulse

import (
	"testing"

	"github.com/jbrzusto/tprocgo/tproc"
	"github.com/jbrzusto/tprocgo/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChPagePairsChannels(t *testing.T) {
	assert.Equal(t, 0, ChPage(1))
	assert.Equal(t, 0, ChPage(2))
	assert.Equal(t, 1, ChPage(3))
	assert.Equal(t, 1, ChPage(4))
	assert.Equal(t, 3, ChPage(8))
}

func TestSpecialRegisterDisjointWithinPage(t *testing.T) {
	odd, err := SpecialRegister(1, "freq")
	require.NoError(t, err)
	even, err := SpecialRegister(2, "freq")
	require.NoError(t, err)
	assert.NotEqual(t, odd, even)
}

func TestSpecialRegisterChannelOutOfRange(t *testing.T) {
	_, err := SpecialRegister(9, "freq")
	require.Error(t, err)
	assert.ErrorIs(t, err, tproc.ErrChannelOutOfRange)
}

func TestModeCodeDefaults(t *testing.T) {
	mc := ModeCode(Params{Length: ip(5)})
	// defaults: phrst=0, stdysel=1, mode=0, outsel=0 -> high bits 0b01000
	assert.Equal(t, 0b01000, mc>>16)
	assert.Equal(t, 5, mc&0xFFFF)
}

func TestAlignSetsMaxCursor(t *testing.T) {
	s := NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	s.Channels[1].TimeCursor = 10
	s.Channels[2].TimeCursor = 100
	s.Align()
	for ch := 1; ch <= 8; ch++ {
		assert.Equal(t, 100, s.Channels[ch].TimeCursor)
	}
}

func TestSyncAllResetsCursors(t *testing.T) {
	s := NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	s.Channels[3].TimeCursor = 50
	s.SyncAll(0)
	words, err := s.Program.Compile()
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, tproc.Defs["synci"].Opcode, uint8(words[0]>>56))
	for ch := 1; ch <= 8; ch++ {
		assert.Equal(t, 0, s.Channels[ch].TimeCursor)
	}
}

func TestSyncAllNoOpWhenNonPositive(t *testing.T) {
	s := NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	s.SyncAll(0)
	assert.Len(t, s.Program.Instructions, 0)
}

func TestConstPulseAdvancesCursorByLength(t *testing.T) {
	s := NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	require.NoError(t, s.Channels[1].RegisterPulse("p", StyleConst, nil, nil, 37))
	tStart := 0
	require.NoError(t, s.ConstPulse(1, "p", Params{}, &tStart, true))
	assert.Equal(t, 37, s.Channels[1].TimeCursor)
}

func TestFlatTopPulseTiming(t *testing.T) {
	// spec.md §8 scenario 4: envelope of 64 samples (4 blocks) registered
	// as flat-top with an explicit middle length of 10 ticks. ramp = 4/2 =
	// 2 blocks. A play=true call at t=100 schedules three outputs at
	// t=100, 100, 112, and advances the cursor to 114.
	s := NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	i := make([]float64, 64)
	require.NoError(t, s.Channels[1].RegisterPulse("ft", StyleFlatTop, i, nil, 10))
	tStart := 100
	require.NoError(t, s.FlatTopPulse(1, "ft", Params{Gain: ip(1000)}, &tStart, true))
	assert.Equal(t, 114, s.Channels[1].TimeCursor)
}
