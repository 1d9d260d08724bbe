// Package avg implements the averager runtime: program templates that
// wrap a subclass's initialize/body/update hooks in a counting loop
// (spec.md §4.F), and the host-side acquire/drain/reduce logic that runs
// them against a device.Device.
package avg

import (
	"github.com/jbrzusto/tprocgo/device"
	"github.com/jbrzusto/tprocgo/pulse"
	"github.com/jbrzusto/tprocgo/tproc"
	"github.com/jbrzusto/tprocgo/units"
)

// Register-page-0 slots the program templates reserve for their loop
// counters and progress counter. Channel register pages start at slot 16
// (pulse.SpecialRegister), so 13-15 are free.
const (
	regExpts = 13
	regReps  = 14
	regCount = 15
)

// Hooks are the program-construction callbacks a subclass supplies
// (spec.md §6 "Program hooks"). All three default to no-ops; Update is
// only invoked by TwoAxisProgram.
type Hooks struct {
	Initialize func(*pulse.Sequencer)
	Body       func(*pulse.Sequencer)
	Update     func(*pulse.Sequencer)
}

func (h Hooks) initialize(s *pulse.Sequencer) {
	if h.Initialize != nil {
		h.Initialize(s)
	}
}

func (h Hooks) body(s *pulse.Sequencer) {
	if h.Body != nil {
		h.Body(s)
	}
}

func (h Hooks) update(s *pulse.Sequencer) {
	if h.Update != nil {
		h.Update(s)
	}
}

// SingleAxisProgram wraps Hooks in a reps-only counting loop:
// "initialize; loop reps { body; count += 1; store count at addr=1 }"
// (spec.md §4.F, the original's AveragerProgram).
type SingleAxisProgram struct {
	Sequencer *pulse.Sequencer
	Reps      int
	Hooks     Hooks
}

// NewSingleAxisProgram builds a fresh program and runs makeProgram once,
// mirroring the original's __init__ calling make_program at construction
// time.
func NewSingleAxisProgram(clocks units.Clocks, reps int, hooks Hooks) *SingleAxisProgram {
	p := &SingleAxisProgram{
		Sequencer: pulse.NewSequencer(tproc.NewProgram(), clocks),
		Reps:      reps,
		Hooks:     hooks,
	}
	p.makeProgram()
	return p
}

func (p *SingleAxisProgram) makeProgram() {
	prog := p.Sequencer.Program
	p.Hooks.initialize(p.Sequencer)
	prog.Regwi(0, regReps, p.Reps, "reps counter")
	prog.Regwi(0, regCount, 0, "progress counter")
	prog.Label("LOOP")
	p.Hooks.body(p.Sequencer)
	prog.Mathi(0, regCount, regCount, "+", 1, "count += 1")
	prog.Memwi(0, regCount, device.CounterAddr, "store progress counter")
	prog.Loopnz(0, regReps, "LOOP", "")
	prog.End("")
}

// TwoAxisProgram wraps Hooks in reps x expts nested counting loops, with
// Update run between the inner loop's end and the outer loop's loopnz
// (spec.md §4.F, the original's RAveragerProgram/RRAveragerProgram —
// SPEC_FULL collapses both into this one type).
type TwoAxisProgram struct {
	Sequencer *pulse.Sequencer
	Reps      int
	Expts     int
	Hooks     Hooks
}

// NewTwoAxisProgram builds a fresh program and runs makeProgram once.
func NewTwoAxisProgram(clocks units.Clocks, reps, expts int, hooks Hooks) *TwoAxisProgram {
	p := &TwoAxisProgram{
		Sequencer: pulse.NewSequencer(tproc.NewProgram(), clocks),
		Reps:      reps,
		Expts:     expts,
		Hooks:     hooks,
	}
	p.makeProgram()
	return p
}

func (p *TwoAxisProgram) makeProgram() {
	prog := p.Sequencer.Program
	p.Hooks.initialize(p.Sequencer)
	prog.Regwi(0, regExpts, p.Expts, "expts counter")
	prog.Regwi(0, regCount, 0, "progress counter")
	prog.Label("OUTER")
	prog.Regwi(0, regReps, p.Reps, "reps counter")
	prog.Label("INNER")
	p.Hooks.body(p.Sequencer)
	prog.Mathi(0, regCount, regCount, "+", 1, "count += 1")
	prog.Memwi(0, regCount, device.CounterAddr, "store progress counter")
	prog.Loopnz(0, regReps, "INNER", "")
	p.Hooks.update(p.Sequencer)
	prog.Loopnz(0, regExpts, "OUTER", "")
	prog.End("")
}
