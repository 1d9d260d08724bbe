package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestFreqRoundTripDAC(t *testing.T) {
	c := DefaultClocks()
	lsb := c.FsDAC / (1 << 32)

	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(0, c.FsDAC/2).Draw(t, "f")

		reg := c.FreqToRegDAC(f)
		back := c.RegToFreqDAC(reg)

		assert.LessOrEqualf(t, math.Abs(f-back), lsb, "DAC freq round-trip exceeded 1 LSB: f=%v back=%v", f, back)
	})
}

func TestFreqRoundTripADC(t *testing.T) {
	c := DefaultClocks()
	lsb := c.FsADC / (1 << 16)

	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(0, c.FsADC/2).Draw(t, "f")

		reg := c.FreqToRegADC(f)
		back := c.RegToFreqADC(reg)

		assert.LessOrEqualf(t, math.Abs(f-back), lsb, "ADC freq round-trip exceeded 1 LSB: f=%v back=%v", f, back)
	})
}

func TestDegRoundTrip(t *testing.T) {
	lsb := 360.0 / (1 << 32)

	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Float64Range(0, 360).Draw(t, "d")

		reg := DegToReg(d)
		back := RegToDeg(reg)

		assert.LessOrEqualf(t, math.Abs(d-back), lsb, "degree round-trip exceeded 1 LSB: d=%v back=%v", d, back)
	})
}

func TestQuantizeADCFreqIsEven(t *testing.T) {
	c := DefaultClocks()

	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(0, c.FsADC/2).Draw(t, "f")

		q := c.QuantizeADCFreq(f)
		reg := c.FreqToRegADC(q)

		assert.Zerof(t, reg%2, "quantized ADC frequency %v produced odd register %d", q, reg)
	})
}

func TestCyclesUSRoundTrip(t *testing.T) {
	c := DefaultClocks()

	rapid.Check(t, func(t *rapid.T) {
		cycles := rapid.IntRange(0, 1<<20).Draw(t, "cycles")

		us := c.CyclesToUS(cycles)
		back := c.USToCycles(us)

		assert.LessOrEqualf(t, absInt(cycles-back), 1, "cycles round-trip exceeded 1 LSB: cycles=%d back=%d", cycles, back)
	})
}
