package tproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramLabelResolution(t *testing.T) {
	p := NewProgram()
	p.Mathi(0, 1, 1, "+", 0, "init")
	p.Label("LOOP")
	p.Mathi(0, 1, 1, "+", 1, "")
	p.Loopnz(0, 1, "LOOP", "")
	p.End("")

	words, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, words, 4)

	// loopnz (index 2) targets index 1 (the "LOOP" label), placed at
	// shift 0.
	assert.Equal(t, uint64(1), words[2]&0xFFFFFFFF)
}

func TestSafeRegwiSmallImmediate(t *testing.T) {
	p := NewProgram()
	p.SafeRegwi(0, 5, 100, "")
	words, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, Defs["regwi"].Opcode, uint8(words[0]>>56))
}

func TestSafeRegwiLargeImmediate(t *testing.T) {
	imm := (1 << 30) + 7
	p := NewProgram()
	p.SafeRegwi(0, 5, imm, "")
	words, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, words, 3) // regwi, bitwi<<2, mathi+rem

	assert.Equal(t, Defs["regwi"].Opcode, uint8(words[0]>>56))
	assert.Equal(t, Defs["bitwi"].Opcode, uint8(words[1]>>56))
	assert.Equal(t, Defs["mathi"].Opcode, uint8(words[2]>>56))
}

func TestSafeRegwiLargeImmediateExactMultipleOfFour(t *testing.T) {
	imm := (1 << 30) + 8 // imm % 4 == 0, no trailing mathi
	p := NewProgram()
	p.SafeRegwi(0, 5, imm, "")
	words, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, words, 2)
}

func TestEmitUnknownMnemonicSticksError(t *testing.T) {
	p := NewProgram()
	p.Emit("bogus", "")
	p.End("")
	require.Error(t, p.Err())
	_, err := p.Compile()
	assert.ErrorIs(t, err, ErrUnknownInstruction)
}

func TestFormatASMIncludesLabelsAndComments(t *testing.T) {
	p := NewProgram()
	p.Label("START")
	p.Regwi(0, 0, 1, "seed counter")
	p.End("")

	out := p.FormatASM()
	assert.Contains(t, out, "START:")
	assert.Contains(t, out, "regwi")
	assert.Contains(t, out, "seed counter")
	assert.Contains(t, out, "end")
}

func TestCompareWithIdenticalProgram(t *testing.T) {
	p := NewProgram()
	p.Regwi(0, 0, 42, "")
	p.End("")
	words, err := p.Compile()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "ref.bin")
	var buf bytes.Buffer
	for _, w := range words {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, w))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	idx, err := p.CompareWith(path)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestCompareWithMismatch(t *testing.T) {
	p := NewProgram()
	p.Regwi(0, 0, 42, "")
	p.End("")
	words, err := p.Compile()
	require.NoError(t, err)
	words[0]++ // corrupt the reference

	dir := t.TempDir()
	path := filepath.Join(dir, "ref.bin")
	var buf bytes.Buffer
	for _, w := range words {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, w))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	idx, err := p.CompareWith(path)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestHexDumpAndBinDump(t *testing.T) {
	p := NewProgram()
	p.Regwi(0, 0, 1, "")
	p.End("")
	words, err := p.Compile()
	require.NoError(t, err)

	hex, err := p.HexDump()
	require.NoError(t, err)
	lines := strings.Split(hex, "\n")
	require.Len(t, lines, len(words))
	assert.Equal(t, fmt.Sprintf("%016x", words[0]), lines[0])

	bin, err := p.BinDump()
	require.NoError(t, err)
	lines = strings.Split(bin, "\n")
	require.Len(t, lines, len(words))
	assert.Equal(t, fmt.Sprintf("%064b", words[0]), lines[0])
}
