package mockdevice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbrzusto/tprocgo/device"
)

func TestStartSynthesizesDeterministicSequence(t *testing.T) {
	d := New(100, 384, 6144, 3072)
	require.NoError(t, d.AvgBuf(2).Configure(0, 10))
	require.NoError(t, d.AvgBuf(2).Enable())
	d.Ticks = 5

	require.NoError(t, d.Start())

	count, err := d.Peek(device.CounterAddr)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), count)

	i, q, err := d.ReadAccumulated(2, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 4, 6, 8, 10}, i)
	assert.Equal(t, []int32{-2, -4, -6, -8, -10}, q)
}

func TestAvgBufNotEnabledProducesNoSamples(t *testing.T) {
	d := New(100, 384, 6144, 3072)
	require.NoError(t, d.AvgBuf(1).Configure(0, 10)) // configured but never enabled
	d.Ticks = 5

	require.NoError(t, d.Start())

	i, q, err := d.ReadAccumulated(1, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 0, 0, 0}, i)
	assert.Equal(t, []int32{0, 0, 0, 0, 0}, q)
}

func TestReadDecimatedWrapsModuloAvgMax(t *testing.T) {
	d := New(4, 384, 6144, 3072)
	require.NoError(t, d.AvgBuf(1).Configure(0, 4))
	require.NoError(t, d.AvgBuf(1).Enable())
	d.Ticks = 4
	require.NoError(t, d.Start())

	i, _, err := d.ReadDecimated(1, 2, 4)
	require.NoError(t, err)
	// addr 2, length 4, avgMax 4 wraps: indices 2,3,0,1 -> ticks 3,4,1,2
	assert.Equal(t, []int32{3, 4, 1, 2}, i)
}

func TestStopClearsRunningFlag(t *testing.T) {
	d := New(10, 384, 6144, 3072)
	require.NoError(t, d.Start())
	require.NoError(t, d.Stop())
	assert.False(t, d.running)
}
