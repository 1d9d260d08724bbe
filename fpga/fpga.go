// Package fpga drives the timed-processor FPGA core over /dev/mem: the
// instruction-memory BRAM, the shared register file, the per-channel
// envelope table, and the decimated/accumulated capture buffers.
//
// Registers and BRAM are accessed by mmap()ing segments of /dev/mem and
// reinterpreting the returned []byte as a pointer to a struct, using
// unsafe.Pointer — the same technique the board's oscilloscope core
// uses for its own register file.
package fpga

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/jbrzusto/tprocgo/device"
	"golang.org/x/sys/unix"
)

const (
	RegBaseAddr   = 0x40000000 // start of the shared register file
	RegBaseSize   = 0x1000     // one page is ample for a few dozen 32-bit slots
	ProgBaseAddr  = 0x40010000 // start of instruction memory BRAM
	ProgWords     = 1 << 16    // instruction memory depth, in 64-bit words
	ProgBaseSize  = ProgWords * 8
	EnvBaseAddr   = 0x40100000 // start of per-channel envelope sample memory
	EnvBytesPerCh = 1 << 20
	AvgBaseAddr   = 0x40800000 // start of per-channel accumulated/decimated buffers
	AvgMaxEntries = 16384      // ring size per channel, in (I, Q) pairs
	AvgBytesPerCh = AvgMaxEntries * 2 * 4 * 2 // decimated + accumulated, int32 I/Q
)

// Regs is a direct image of the shared register file, mmap'd at
// RegBaseAddr. Slot 1 is the progress counter the TP increments once per
// readout and the host polls (spec.md §5, §6).
type Regs struct {
	Command uint32 // bit 0: run (set by Start, cleared by Stop)
	Counter uint32 // slot 1: TP-writes, host-reads progress counter
	_       [62]uint32
}

// readoutRegs is one ADC channel's mixer configuration, embedded
// contiguously per channel inside the register file past Regs.
type readoutRegs struct {
	Mode uint32
	Freq uint32
}

// avgBufRegs is one ADC channel's capture-buffer configuration.
type avgBufRegs struct {
	Addr    uint32
	Length  uint32
	Control uint32 // bit 0: enable
}

// FPGA is the redpitaya-class board's timed-processor core.
type FPGA struct {
	memfile *os.File

	regs     *Regs
	regsRaw  []byte
	progMem  []byte
	envMem   []byte // 8 channels * EnvBytesPerCh
	avgMem   []byte // 8 channels * AvgBytesPerCh

	clocks struct{ proc, dac, adc float64 }
}

// New mmaps the register file, instruction memory, envelope memory, and
// capture buffers through /dev/mem.
func New(fsProc, fsDAC, fsADC float64) (*FPGA, error) {
	f := &FPGA{}
	f.clocks.proc, f.clocks.dac, f.clocks.adc = fsProc, fsDAC, fsADC

	var err error
	f.memfile, err = os.OpenFile("/dev/mem", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fpga: opening /dev/mem: %w", err)
	}

	if f.regsRaw, err = f.mmap(RegBaseAddr, RegBaseSize, true); err != nil {
		f.Close()
		return nil, err
	}
	f.regs = (*Regs)(unsafe.Pointer(&f.regsRaw[0]))

	if f.progMem, err = f.mmap(ProgBaseAddr, ProgBaseSize, true); err != nil {
		f.Close()
		return nil, err
	}
	if f.envMem, err = f.mmap(EnvBaseAddr, 8*EnvBytesPerCh, true); err != nil {
		f.Close()
		return nil, err
	}
	if f.avgMem, err = f.mmap(AvgBaseAddr, 8*AvgBytesPerCh, true); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (f *FPGA) mmap(addr int64, size int, writable bool) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	m, err := unix.Mmap(int(f.memfile.Fd()), addr, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("fpga: mmap at 0x%x/%d: %w", addr, size, err)
	}
	return m, nil
}

// Close unmaps all regions and closes /dev/mem.
func (f *FPGA) Close() error {
	for _, m := range [][]byte{f.avgMem, f.envMem, f.progMem, f.regsRaw} {
		if m != nil {
			_ = unix.Munmap(m)
		}
	}
	f.regs = nil
	if f.memfile != nil {
		err := f.memfile.Close()
		f.memfile = nil
		return err
	}
	return nil
}

// LoadProgram writes a compiled instruction stream into program BRAM.
func (f *FPGA) LoadProgram(words []uint64) error {
	if len(words) > ProgWords {
		return fmt.Errorf("fpga: program has %d words, exceeds capacity %d", len(words), ProgWords)
	}
	dst := (*[ProgWords]uint64)(unsafe.Pointer(&f.progMem[0]))
	for i, w := range words {
		dst[i] = w
	}
	return nil
}

// Start begins TP execution.
func (f *FPGA) Start() error {
	f.regs.Command |= 1
	return nil
}

// Stop halts TP execution immediately.
func (f *FPGA) Stop() error {
	f.regs.Command &^= 1
	return nil
}

// Peek reads one 32-bit register-file slot.
func (f *FPGA) Peek(addr uint32) (uint32, error) {
	slots := (*[RegBaseSize / 4]uint32)(unsafe.Pointer(&f.regsRaw[0]))
	if int(addr) >= len(slots) {
		return 0, fmt.Errorf("fpga: register address %d out of range", addr)
	}
	return slots[addr], nil
}

// Poke writes one 32-bit register-file slot.
func (f *FPGA) Poke(addr uint32, value uint32) error {
	slots := (*[RegBaseSize / 4]uint32)(unsafe.Pointer(&f.regsRaw[0]))
	if int(addr) >= len(slots) {
		return fmt.Errorf("fpga: register address %d out of range", addr)
	}
	slots[addr] = value
	return nil
}

// LoadEnvelope writes one channel's I/Q envelope samples starting at
// baseAddr (in samples) into that channel's envelope memory.
func (f *FPGA) LoadEnvelope(ch int, i, q []int16, baseAddr int) error {
	if ch < 1 || ch > 8 {
		return fmt.Errorf("fpga: channel %d out of range", ch)
	}
	if len(i) != len(q) {
		return fmt.Errorf("fpga: envelope I/Q length mismatch: %d vs %d", len(i), len(q))
	}
	region := f.envMem[(ch-1)*EnvBytesPerCh : ch*EnvBytesPerCh]
	samples := (*[EnvBytesPerCh / 2]int16)(unsafe.Pointer(&region[0]))
	for idx := range i {
		samples[2*(baseAddr+idx)] = i[idx]
		samples[2*(baseAddr+idx)+1] = q[idx]
	}
	return nil
}

type readout struct {
	f  *FPGA
	ch int
}

func (f *FPGA) Readout(ch int) device.Readout { return readout{f, ch} }

func (r readout) Configure(mode device.ReadoutMode, freqMHz float64) error {
	regs := r.f.readoutRegs(r.ch)
	regs.Mode = uint32(mode)
	regs.Freq = uint32(freqMHz * (1 << 16) / r.f.clocks.adc)
	return nil
}

func (f *FPGA) readoutRegs(ch int) *readoutRegs {
	offset := unsafe.Sizeof(Regs{}) + uintptr(ch-1)*unsafe.Sizeof(readoutRegs{})
	return (*readoutRegs)(unsafe.Pointer(&f.regsRaw[offset]))
}

type avgBuf struct {
	f  *FPGA
	ch int
}

func (f *FPGA) AvgBuf(ch int) device.AvgBuf { return avgBuf{f, ch} }

func (b avgBuf) Configure(addr, length int) error {
	regs := b.f.avgBufRegs(b.ch)
	regs.Addr = uint32(addr)
	regs.Length = uint32(length)
	return nil
}

func (b avgBuf) Enable() error {
	regs := b.f.avgBufRegs(b.ch)
	regs.Control |= 1
	return nil
}

func (f *FPGA) avgBufRegs(ch int) *avgBufRegs {
	base := unsafe.Sizeof(Regs{}) + 8*unsafe.Sizeof(readoutRegs{})
	offset := base + uintptr(ch-1)*unsafe.Sizeof(avgBufRegs{})
	return (*avgBufRegs)(unsafe.Pointer(&f.regsRaw[offset]))
}

// ReadAccumulated reads length (I, Q) pairs of the integrated readout
// starting at addr, modulo AvgMax.
func (f *FPGA) ReadAccumulated(ch int, addr, length int) ([]int32, []int32, error) {
	return f.readRing(ch, addr, length, AvgMaxEntries*2*4) // accumulated half of the per-channel region
}

// ReadDecimated reads length (I, Q) pairs of the raw downsampled capture
// starting at addr, modulo AvgMax.
func (f *FPGA) ReadDecimated(ch int, addr, length int) ([]int32, []int32, error) {
	return f.readRing(ch, addr, length, 0) // decimated half of the per-channel region
}

func (f *FPGA) readRing(ch, addr, length, halfOffset int) ([]int32, []int32, error) {
	if ch < 1 || ch > 8 {
		return nil, nil, fmt.Errorf("fpga: channel %d out of range", ch)
	}
	region := f.avgMem[(ch-1)*AvgBytesPerCh+halfOffset:]
	ring := (*[AvgMaxEntries * 2]int32)(unsafe.Pointer(&region[0]))

	i := make([]int32, length)
	q := make([]int32, length)
	for n := 0; n < length; n++ {
		idx := (addr + n) % AvgMaxEntries
		i[n] = ring[2*idx]
		q[n] = ring[2*idx+1]
	}
	return i, q, nil
}

func (f *FPGA) AvgMax() int      { return AvgMaxEntries }
func (f *FPGA) FsProc() float64  { return f.clocks.proc }
func (f *FPGA) FsDAC() float64   { return f.clocks.dac }
func (f *FPGA) FsADC() float64   { return f.clocks.adc }
