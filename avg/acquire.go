package avg

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jbrzusto/tprocgo/buffer"
	"github.com/jbrzusto/tprocgo/device"
	"github.com/jbrzusto/tprocgo/pulse"
	"github.com/jbrzusto/tprocgo/tproc"
)

// Config bundles the host-side acquire parameters that don't belong on
// the program template itself: which device to drive, which ADC channels
// to read out, each channel's mixer frequency and readout-window length,
// and an optional logger for drain-loop progress (nil uses a disabled
// default, never the hot TP loop itself — spec.md §1 ambient-stack note).
type Config struct {
	Device     device.Device
	Channels   []int
	AdcFreqMHz map[int]float64
	AdcLength  map[int]int
	Logger     *log.Logger
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}

// setupCapture configures every channel's mixer and both its decimated
// and accumulated capture buffers (spec.md §4.F step 1).
func setupCapture(cfg Config) error {
	for _, ch := range cfg.Channels {
		freq := cfg.AdcFreqMHz[ch]
		if err := cfg.Device.Readout(ch).Configure(device.ModeProduct, freq); err != nil {
			return fmt.Errorf("avg: configuring readout %d: %w", ch, err)
		}
		length := cfg.AdcLength[ch]
		if err := cfg.Device.AvgBuf(ch).Configure(0, length); err != nil {
			return fmt.Errorf("avg: configuring avg buf %d: %w", ch, err)
		}
		if err := cfg.Device.AvgBuf(ch).Enable(); err != nil {
			return fmt.Errorf("avg: enabling avg buf %d: %w", ch, err)
		}
	}
	return nil
}

// compileAndStart uploads the compiled program, zeroes the progress
// counter, and (re)starts the TP (spec.md §4.F steps 2-3).
func compileAndStart(dev device.Device, prog *tproc.Program) error {
	words, err := prog.Compile()
	if err != nil {
		return err
	}
	if err := dev.LoadProgram(words); err != nil {
		return err
	}
	if err := dev.Poke(device.CounterAddr, 0); err != nil {
		return err
	}
	if err := dev.Stop(); err != nil {
		return err
	}
	return dev.Start()
}

// drain repeatedly polls the progress counter and copies newly completed
// accumulated (I, Q) pairs into a per-channel ring, in ~1000-entry
// even-length batches, until total entries have been drained (spec.md
// §4.F step 4-5).
func drain(dev device.Device, channels []int, total int, logger *log.Logger) (map[int]*buffer.Ring, *buffer.Trace, error) {
	rings := make(map[int]*buffer.Ring, len(channels))
	for _, ch := range channels {
		rings[ch] = buffer.NewRing(total)
	}
	trace := &buffer.Trace{}

	last := 0
	for last < total {
		raw, err := dev.Peek(device.CounterAddr)
		if err != nil {
			return nil, nil, err
		}
		count := int(raw)

		target := last + 1000
		if total-1 < target {
			target = total - 1
		}
		if count < target {
			continue
		}

		length := count - last
		if length%2 != 0 {
			length--
		}
		if length <= 0 {
			continue
		}
		addr := last % dev.AvgMax()

		for _, ch := range channels {
			i, q, err := dev.ReadAccumulated(ch, addr, length)
			if err != nil {
				return nil, nil, err
			}
			if err := rings[ch].Commit(i, q); err != nil {
				return nil, nil, err
			}
		}
		trace.Append(time.Now().UnixNano(), count, addr, length)
		logger.Debug("drained chunk", "addr", addr, "length", length, "count", count)
		last += length
	}
	return rings, trace, nil
}

func reduceOne(samples []int32, from, stride, n, windowLength int) float64 {
	var sum float64
	for k := 0; k < n; k++ {
		sum += float64(samples[from+k*stride])
	}
	return sum / float64(n) / float64(windowLength)
}

// Acquire runs a SingleAxisProgram to completion and returns each
// channel's averaged I, Q, and amplitude (spec.md §4.F steps 6-7,
// collapsed to the reps-only case: k = 1 readout per rep).
func (p *SingleAxisProgram) Acquire(cfg Config) (i, q, amp map[int]float64, err error) {
	if err := pulse.UploadEnvelopes(p.Sequencer, cfg.Device); err != nil {
		return nil, nil, nil, err
	}
	if err := setupCapture(cfg); err != nil {
		return nil, nil, nil, err
	}
	if err := compileAndStart(cfg.Device, p.Sequencer.Program); err != nil {
		return nil, nil, nil, err
	}

	rings, _, err := drain(cfg.Device, cfg.Channels, p.Reps, cfg.logger())
	if err != nil {
		return nil, nil, nil, err
	}

	i, q, amp = map[int]float64{}, map[int]float64{}, map[int]float64{}
	for _, ch := range cfg.Channels {
		r := rings[ch]
		iv := reduceOne(r.I, 0, 1, r.Written, cfg.AdcLength[ch])
		qv := reduceOne(r.Q, 0, 1, r.Written, cfg.AdcLength[ch])
		i[ch], q[ch], amp[ch] = iv, qv, math.Hypot(iv, qv)
	}
	return i, q, amp, nil
}

// TwoAxisResult holds a two-axis acquire's reduced output, indexed
// [channel][offset][expt] for I/Q/Amp, plus the swept axis' values.
type TwoAxisResult struct {
	ExptPoints []float64
	I, Q, Amp  map[int][][]float64
}

// Acquire runs a TwoAxisProgram to completion and reduces its drained
// samples per spec.md §4.F step 6: for ReadoutPerExpt = k and
// average-offsets A subset of {0..k-1}, each channel/offset's
// subsequence (stride k, starting at offset) is reshaped to
// (expts, reps), averaged along reps, and divided by the readout window
// length. start/step place the swept axis (step 7).
func (p *TwoAxisProgram) Acquire(cfg Config, readoutPerExpt int, averageOffsets []int, start, step float64) (*TwoAxisResult, error) {
	rings, _, err := p.acquireRaw(cfg, readoutPerExpt)
	if err != nil {
		return nil, err
	}

	out := &TwoAxisResult{
		ExptPoints: make([]float64, p.Expts),
		I:          map[int][][]float64{},
		Q:          map[int][][]float64{},
		Amp:        map[int][][]float64{},
	}
	for e := 0; e < p.Expts; e++ {
		out.ExptPoints[e] = start + float64(e)*step
	}

	for _, ch := range cfg.Channels {
		r := rings[ch]
		iRows := make([][]float64, len(averageOffsets))
		qRows := make([][]float64, len(averageOffsets))
		aRows := make([][]float64, len(averageOffsets))
		for oi, a := range averageOffsets {
			iRow := make([]float64, p.Expts)
			qRow := make([]float64, p.Expts)
			aRow := make([]float64, p.Expts)
			for e := 0; e < p.Expts; e++ {
				from := (e*p.Reps)*readoutPerExpt + a
				iv := reduceOne(r.I, from, readoutPerExpt, p.Reps, cfg.AdcLength[ch])
				qv := reduceOne(r.Q, from, readoutPerExpt, p.Reps, cfg.AdcLength[ch])
				iRow[e], qRow[e], aRow[e] = iv, qv, math.Hypot(iv, qv)
			}
			iRows[oi], qRows[oi], aRows[oi] = iRow, qRow, aRow
		}
		out.I[ch], out.Q[ch], out.Amp[ch] = iRows, qRows, aRows
	}
	return out, nil
}

// AcquireRaw runs a TwoAxisProgram and returns the un-reduced per-channel
// accumulated (I, Q) rings, matching the original's "Average == []"
// passthrough (spec.md §4.F note; original_source averager_program.py
// RRAveragerProgram.acquire with Average=[]).
func (p *TwoAxisProgram) AcquireRaw(cfg Config, readoutPerExpt int) (map[int]*buffer.Ring, *buffer.Trace, error) {
	return p.acquireRaw(cfg, readoutPerExpt)
}

func (p *TwoAxisProgram) acquireRaw(cfg Config, readoutPerExpt int) (map[int]*buffer.Ring, *buffer.Trace, error) {
	if err := pulse.UploadEnvelopes(p.Sequencer, cfg.Device); err != nil {
		return nil, nil, err
	}
	if err := setupCapture(cfg); err != nil {
		return nil, nil, err
	}
	if err := compileAndStart(cfg.Device, p.Sequencer.Program); err != nil {
		return nil, nil, err
	}

	total := p.Reps * p.Expts * readoutPerExpt
	return drain(cfg.Device, cfg.Channels, total, cfg.logger())
}
