package tproc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeSmallestProgram(t *testing.T) {
	// spec.md §8 scenario 1: a single `end` instruction is the whole
	// program; its word is just the opcode in the top byte.
	p := NewProgram()
	p.End("halt")
	words, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, uint64(Defs["end"].Opcode)<<56, words[0])
}

func TestEncodeImmediateBoundary(t *testing.T) {
	// spec.md §8 scenario 2: immediates right at the upper 2^31 boundary.
	p := NewProgram()
	p.Regwi(0, 0, (1<<31)-1, "max positive")
	words, err := p.Compile()
	require.NoError(t, err)
	assert.Equal(t, uint64((1<<31)-1), words[0]&0xFFFFFFFF)

	p2 := NewProgram()
	p2.Regwi(0, 0, 1<<31, "overflow")
	_, err = p2.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImmediateOverflow))
}

func TestEncodeNegativeImmediateFolds(t *testing.T) {
	p := NewProgram()
	p.Regwi(0, 0, -1, "")
	words, err := p.Compile()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<31)-1, words[0]&0xFFFFFFFF)
}

func TestEncodeUnknownInstruction(t *testing.T) {
	p := NewProgram()
	p.Emit("frobnicate", "")
	_, err := p.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownInstruction))
}

func TestEncodeUnknownLabel(t *testing.T) {
	p := NewProgram()
	p.Loopnz(0, 1, "NOWHERE", "")
	_, err := p.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLabel))
}

func TestEncodeUnknownOperator(t *testing.T) {
	p := NewProgram()
	p.Mathi(0, 1, 1, "frobnicate", 1, "")
	_, err := p.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}

func TestEncodeLoopnzSetsFlag(t *testing.T) {
	p := NewProgram()
	p.Label("LOOP")
	p.Mathi(0, 1, 1, "-", 1, "")
	p.Loopnz(0, 1, "LOOP", "")
	words, err := p.Compile()
	require.NoError(t, err)
	assert.NotZero(t, words[1]&loopnzFlag)
}

func TestEncodeOpcodeInTopByte(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		page := rapid.IntRange(0, 7).Draw(rt, "page")
		reg := rapid.IntRange(0, 31).Draw(rt, "reg")
		imm := rapid.IntRange(0, (1<<30)-1).Draw(rt, "imm")

		p := NewProgram()
		p.Regwi(page, reg, imm, "")
		words, err := p.Compile()
		require.NoError(rt, err)
		assert.Equal(rt, uint64(Defs["regwi"].Opcode), words[0]>>56)
	})
}

func TestEncodeDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		page := rapid.IntRange(0, 7).Draw(rt, "page")
		reg := rapid.IntRange(0, 31).Draw(rt, "reg")
		imm := rapid.IntRange(-(1 << 20), (1<<30)-1).Draw(rt, "imm")

		inst := Instruction{Mnemonic: "regwi", Args: []interface{}{page, reg, imm}}
		labels := map[string]int{}
		a, err1 := Encode(inst, labels)
		b, err2 := Encode(inst, labels)
		require.NoError(rt, err1)
		require.NoError(rt, err2)
		assert.Equal(rt, a, b)
	})
}

func TestFoldImmediateAcceptsInRangeValues(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Int64Range(-(1<<30), (1<<31)-1).Draw(rt, "x")
		folded, err := foldImmediate(x)
		require.NoError(rt, err)
		assert.True(rt, folded < (1<<32))
	})
}
