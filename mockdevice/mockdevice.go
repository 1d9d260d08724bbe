// Package mockdevice provides a deterministic, in-memory device.Device
// for testing the sequencer and averager runtime without hardware. State
// transitions are guarded by a single mutex, mirroring the
// lock/defer-unlock discipline a CPU emulator uses to keep its register
// file consistent across concurrent reads and instruction execution.
package mockdevice

import (
	"fmt"
	"sync"

	"github.com/jbrzusto/tprocgo/device"
)

// Readout records the mixer configuration applied to one ADC channel.
type Readout struct {
	Mode device.ReadoutMode
	Freq float64
}

// AvgBuf records the capture-buffer configuration applied to one ADC
// channel.
type AvgBuf struct {
	Addr, Length int
	Enabled      bool
}

// Device is a deterministic, software-only stand-in for the FPGA. On
// Start, it synthesizes exactly one (I, Q) pair per channel per tick into
// its accumulated ring — each tick the pair (tick, -tick) on channel 1,
// (2*tick, -2*tick) on channel 2, and so on — and advances the shared
// counter by one per tick, up to Ticks.
type Device struct {
	mu sync.Mutex

	program []uint64
	regs    map[uint32]uint32
	running bool
	tick    int

	readouts map[int]*Readout
	avgBufs  map[int]*AvgBuf

	accumI map[int][]int32
	accumQ map[int][]int32
	decI   map[int][]int32
	decQ   map[int][]int32

	avgMax          int
	fsProc, fsDAC, fsADC float64

	// Ticks bounds how far Start's synthetic counter advances; tests set
	// it to the expected total sample count before calling Start.
	Ticks int
}

// New returns an empty mock with the given ring size and clock rates.
func New(avgMax int, fsProc, fsDAC, fsADC float64) *Device {
	return &Device{
		regs:     map[uint32]uint32{},
		readouts: map[int]*Readout{},
		avgBufs:  map[int]*AvgBuf{},
		accumI:   map[int][]int32{},
		accumQ:   map[int][]int32{},
		decI:     map[int][]int32{},
		decQ:     map[int][]int32{},
		avgMax:   avgMax,
		fsProc:   fsProc,
		fsDAC:    fsDAC,
		fsADC:    fsADC,
	}
}

func (d *Device) LoadProgram(words []uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.program = append([]uint64(nil), words...)
	return nil
}

// Start synthesizes Ticks worth of (I, Q) pairs into every channel whose
// AvgBuf has been enabled, then advances the progress counter to Ticks.
// It runs synchronously: by the time Start returns, every entry the
// drain loop will ever see is already committed, which is sufficient to
// exercise the averager's drain/reduce logic deterministically.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true

	for ch, buf := range d.avgBufs {
		if !buf.Enabled {
			continue
		}
		i := make([]int32, d.Ticks)
		q := make([]int32, d.Ticks)
		for t := 0; t < d.Ticks; t++ {
			i[t] = int32((t + 1) * ch)
			q[t] = -int32((t + 1) * ch)
		}
		d.accumI[ch] = i
		d.accumQ[ch] = q
		d.decI[ch] = append([]int32(nil), i...)
		d.decQ[ch] = append([]int32(nil), q...)
	}
	d.regs[device.CounterAddr] = uint32(d.Ticks)
	d.tick = d.Ticks
	return nil
}

func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	return nil
}

func (d *Device) Peek(addr uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[addr], nil
}

func (d *Device) Poke(addr uint32, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[addr] = value
	return nil
}

func (d *Device) LoadEnvelope(ch int, i, q []int16, baseAddr int) error {
	return nil // envelope content doesn't affect the synthetic sample stream
}

func (d *Device) Readout(ch int) device.Readout {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.readouts[ch]
	if !ok {
		r = &Readout{}
		d.readouts[ch] = r
	}
	return readoutHandle{d, ch}
}

type readoutHandle struct {
	d  *Device
	ch int
}

func (h readoutHandle) Configure(mode device.ReadoutMode, freqMHz float64) error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.d.readouts[h.ch] = &Readout{Mode: mode, Freq: freqMHz}
	return nil
}

func (d *Device) AvgBuf(ch int) device.AvgBuf {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.avgBufs[ch]; !ok {
		d.avgBufs[ch] = &AvgBuf{}
	}
	return avgBufHandle{d, ch}
}

type avgBufHandle struct {
	d  *Device
	ch int
}

func (h avgBufHandle) Configure(addr, length int) error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	b := h.d.avgBufs[h.ch]
	b.Addr, b.Length = addr, length
	return nil
}

func (h avgBufHandle) Enable() error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.d.avgBufs[h.ch].Enabled = true
	return nil
}

func (d *Device) ReadAccumulated(ch int, addr, length int) ([]int32, []int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ringSlice(d.accumI[ch], addr, length, d.avgMax), ringSlice(d.accumQ[ch], addr, length, d.avgMax), nil
}

func (d *Device) ReadDecimated(ch int, addr, length int) ([]int32, []int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ringSlice(d.decI[ch], addr, length, d.avgMax), ringSlice(d.decQ[ch], addr, length, d.avgMax), nil
}

func ringSlice(data []int32, addr, length, avgMax int) []int32 {
	out := make([]int32, length)
	for n := 0; n < length; n++ {
		idx := (addr + n) % avgMax
		if idx < len(data) {
			out[n] = data[idx]
		}
	}
	return out
}

func (d *Device) AvgMax() int     { return d.avgMax }
func (d *Device) FsProc() float64 { return d.fsProc }
func (d *Device) FsDAC() float64  { return d.fsDAC }
func (d *Device) FsADC() float64  { return d.fsADC }

var _ fmt.Stringer = (*Device)(nil)

// String summarizes the mock's configured channels, for test failure
// messages.
func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("mockdevice(channels=%d, ticks=%d)", len(d.avgBufs), d.tick)
}
