// Package device declares the capability interface the pulse sequencer
// and averager runtime require of the hardware (spec.md §4.G), so both
// run unmodified against a real FPGA (package fpga) or a deterministic
// in-memory mock (package mockdevice).
package device

// ReadoutMode selects how a readout channel's digital mixer combines the
// incoming ADC samples with its local oscillator.
type ReadoutMode int

const (
	ModeProduct ReadoutMode = iota
	ModeInput
)

// Readout configures one ADC channel's digital-downconversion mixer.
type Readout interface {
	Configure(mode ReadoutMode, freqMHz float64) error
}

// AvgBuf configures and enables one ADC channel's decimated or
// accumulated capture buffer.
type AvgBuf interface {
	Configure(addr, length int) error
	Enable() error
}

// Device is the full capability surface the averager runtime drives
// (spec.md §4.G). AVG_MAX and the three clock rates are exposed as
// methods rather than package constants so a mock can report different
// values than real hardware.
type Device interface {
	LoadProgram(words []uint64) error
	Start() error
	Stop() error
	Peek(addr uint32) (uint32, error)
	Poke(addr uint32, value uint32) error

	LoadEnvelope(ch int, i, q []int16, baseAddr int) error

	Readout(ch int) Readout
	AvgBuf(ch int) AvgBuf

	ReadAccumulated(ch int, addr, length int) (i []int32, q []int32, err error)
	ReadDecimated(ch int, addr, length int) (i []int32, q []int32, err error)

	AvgMax() int
	FsProc() float64
	FsDAC() float64
	FsADC() float64
}

// CounterAddr is the device register slot the TP increments once per
// completed readout and the host polls during a drain loop (spec.md §5).
const CounterAddr = 1
