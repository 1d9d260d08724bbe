package buffer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCommitAdvancesWritten(t *testing.T) {
	r := NewRing(10)
	require.NoError(t, r.Commit([]int32{1, 2}, []int32{-1, -2}))
	assert.Equal(t, 2, r.Written)
	assert.Equal(t, []int32{1, 2, 0, 0, 0, 0, 0, 0, 0, 0}, r.I)
}

func TestRingDeviceAddrWrapsModuloAvgMax(t *testing.T) {
	r := NewRing(2500)
	r.Written = 1000
	assert.Equal(t, 0, r.DeviceAddr(1000))
	r.Written = 1500
	assert.Equal(t, 500, r.DeviceAddr(1000))
}

func TestRingCommitRejectsOverflow(t *testing.T) {
	r := NewRing(4)
	require.NoError(t, r.Commit([]int32{1, 2, 3}, []int32{1, 2, 3}))
	err := r.Commit([]int32{4, 5}, []int32{4, 5})
	assert.Error(t, err)
}

func TestRingDoneAtCapacity(t *testing.T) {
	r := NewRing(2)
	assert.False(t, r.Done())
	require.NoError(t, r.Commit([]int32{1, 2}, []int32{1, 2}))
	assert.True(t, r.Done())
}

func TestTraceSaveYAML(t *testing.T) {
	tr := &Trace{}
	tr.Append(1000, 1000, 0, 1000)
	tr.Append(2000, 2500, 1000, 1500)

	path := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, tr.SaveYAML(path))
}
