package pulse

import (
	"fmt"

	"github.com/jbrzusto/tprocgo/tproc"
	"github.com/jbrzusto/tprocgo/units"
)

// Params bundles the optional pulse-register fields; a nil field means
// "leave unset / use the envelope's recorded default" (spec.md §4.E
// set_pulse_registers). Freq and Phase are physical units (MHz, degrees);
// everything else is a raw register value.
type Params struct {
	Freq    *float64
	Phase   *float64
	Gain    *int
	Addr    *int
	Length  *int
	Phrst   *int
	Stdysel *int
	Mode    *int
	Outsel  *int
}

func ip(v int) *int          { return &v }
func fp(v float64) *float64  { return &v }

// ModeCode packs phrst|stdysel|mode|outsel|length into the 21-bit mode
// code (spec.md §4.E). Missing fields default to phrst=0, stdysel=1,
// mode=0, outsel=0.
func ModeCode(p Params) int {
	phrst, stdysel, mode, outsel, length := 0, 1, 0, 0, 0
	if p.Phrst != nil {
		phrst = *p.Phrst
	}
	if p.Stdysel != nil {
		stdysel = *p.Stdysel
	}
	if p.Mode != nil {
		mode = *p.Mode
	}
	if p.Outsel != nil {
		outsel = *p.Outsel
	}
	if p.Length != nil {
		length = *p.Length
	}
	return (phrst*0b10000 | stdysel*0b01000 | mode*0b00100 | outsel) << 16 | length
}

// SpecialRegister returns the register-page slot index for one of a DAC
// channel's six control registers (spec.md §3 "Special-register map").
// Channel pairs {2k-1, 2k} share page k-1 with disjoint slots: the first
// channel of the pair uses slots 16..21, the second uses 23..28.
func SpecialRegister(ch int, name string) (int, error) {
	if ch < 1 || ch > 8 {
		return 0, tproc.NewChannelOutOfRangeError(ch)
	}
	offset := 0
	if ch%2 == 0 {
		offset = 7
	}
	slots := map[string]int{"freq": 16, "phase": 17, "addr": 18, "gain": 19, "mode": 20, "t": 21}
	slot, ok := slots[name]
	if !ok {
		return 0, fmt.Errorf("pulse: unknown special register %q", name)
	}
	return slot + offset, nil
}

// ChPage returns the register page shared by DAC channel ch's pair.
func ChPage(ch int) int { return (ch - 1) / 2 }

// Sequencer emits register-setup and channel-output instructions for the
// channels 1..8, tracking each channel's envelope registry and time
// cursor (spec.md §4.E).
type Sequencer struct {
	Program  *tproc.Program
	Clocks   units.Clocks
	Channels map[int]*Channel
}

// NewSequencer returns a sequencer over an empty set of channels 1..8,
// emitting onto prog.
func NewSequencer(prog *tproc.Program, clocks units.Clocks) *Sequencer {
	s := &Sequencer{Program: prog, Clocks: clocks, Channels: map[int]*Channel{}}
	for ch := 1; ch <= 8; ch++ {
		s.Channels[ch] = NewChannel(ch)
	}
	return s
}

func (s *Sequencer) channel(ch int) (*Channel, error) {
	c, ok := s.Channels[ch]
	if !ok {
		return nil, tproc.NewChannelOutOfRangeError(ch)
	}
	return c, nil
}

// regs is the set of register indices set_pulse_registers resolves once
// per call.
type regs struct {
	page, freq, phase, addr, gain, mode, t int
}

func (s *Sequencer) regsFor(ch int) (regs, error) {
	page := ChPage(ch)
	freq, err := SpecialRegister(ch, "freq")
	if err != nil {
		return regs{}, err
	}
	phase, _ := SpecialRegister(ch, "phase")
	addr, _ := SpecialRegister(ch, "addr")
	gain, _ := SpecialRegister(ch, "gain")
	mode, _ := SpecialRegister(ch, "mode")
	t, _ := SpecialRegister(ch, "t")
	return regs{page, freq, phase, addr, gain, mode, t}, nil
}

// SetPulseRegisters emits up to six register writes on ch's page: one
// each for any non-nil freq, phase, gain, t, addr, and (if any of
// phrst/stdysel/mode/outsel/length is set) the mode code (spec.md §4.E).
func (s *Sequencer) SetPulseRegisters(ch int, p Params, t *int) (regs, error) {
	r, err := s.regsFor(ch)
	if err != nil {
		return regs{}, err
	}

	if p.Freq != nil {
		reg := s.Clocks.FreqToRegDAC(*p.Freq)
		s.Program.SafeRegwi(r.page, r.freq, int(reg), fmt.Sprintf("freq = %g MHz", *p.Freq))
	}
	if p.Phase != nil {
		reg := units.DegToReg(*p.Phase)
		s.Program.SafeRegwi(r.page, r.phase, int(reg), fmt.Sprintf("phase = %g", *p.Phase))
	}
	if p.Gain != nil {
		s.Program.Regwi(r.page, r.gain, *p.Gain, fmt.Sprintf("gain = %d", *p.Gain))
	}
	if t != nil {
		s.Program.Regwi(r.page, r.t, *t, fmt.Sprintf("t = %d", *t))
	}
	if p.Addr != nil {
		s.Program.Regwi(r.page, r.addr, *p.Addr, fmt.Sprintf("addr = %d", *p.Addr))
	}
	if p.Length != nil || p.Stdysel != nil || p.Phrst != nil || p.Mode != nil || p.Outsel != nil {
		mc := ModeCode(p)
		s.Program.Regwi(r.page, r.mode, mc, fmt.Sprintf("stdysel|mode|outsel = 0b%05b | length = %d", mc>>16, mc&0xFFFF))
	}
	return r, nil
}

func (s *Sequencer) emitSet(ch int, r regs, comment string) {
	s.Program.Set(ch, r.page, r.freq, r.phase, r.addr, r.gain, r.mode, r.t, comment)
}

// ConstPulse plays a DDS-only pulse (no envelope table), advancing the
// channel cursor by length when play is true (spec.md §4.E const_pulse).
func (s *Sequencer) ConstPulse(ch int, name string, p Params, t *int, play bool) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}

	if name != "" {
		env, resolved, ok := c.Resolve(name)
		if !ok {
			return fmt.Errorf("pulse: channel %d has no pulse %q", ch, name)
		}
		c.LastPulse = resolved
		p.Length = ip(env.Length)
	}
	if p.Length != nil {
		p.Outsel = ip(1)
	}

	r, err := s.SetPulseRegisters(ch, p, nil)
	if err != nil {
		return err
	}

	if play {
		start := c.TimeCursor
		if t != nil {
			start = *t
		}
		if p.Length != nil {
			c.TimeCursor = start + *p.Length
		}
		s.Program.Regwi(r.page, r.t, start, fmt.Sprintf("t = %d", start))
		s.emitSet(ch, r, fmt.Sprintf("ch = %d const pulse @t = %d", ch, start))
	}
	return nil
}

// ArbPulse plays a registered arbitrary envelope through the DAC table,
// advancing the channel cursor by the envelope's block length.
func (s *Sequencer) ArbPulse(ch int, name string, p Params, t *int, play bool) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}

	var env *Envelope
	if name != "" {
		var ok bool
		env, name, ok = c.Resolve(name)
		if !ok {
			return fmt.Errorf("pulse: channel %d has no pulse %q", ch, name)
		}
		c.LastPulse = name
		p.Addr = ip(env.BaseAddr / 16)
		p.Length = ip(env.Length)
	}

	r, err := s.SetPulseRegisters(ch, p, nil)
	if err != nil {
		return err
	}

	if play {
		if env == nil {
			env, _, _ = c.Resolve("")
		}
		start := c.TimeCursor
		if t != nil {
			start = *t
		}
		c.TimeCursor = start + env.Length
		s.Program.SafeRegwi(r.page, r.t, start, fmt.Sprintf("t = %d", start))
		s.emitSet(ch, r, fmt.Sprintf("ch = %d arb pulse @t = %d", ch, start))
	}
	return nil
}

// FlatTopPulse plays a ramp-up + constant-middle + ramp-down pulse from
// one ARB/FLAT_TOP envelope, using three channel-output instructions
// (spec.md §4.E flat_top_pulse).
func (s *Sequencer) FlatTopPulse(ch int, name string, p Params, t *int, play bool) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}

	var env *Envelope
	var ramp int
	if name != "" {
		var ok bool
		env, name, ok = c.Resolve(name)
		if !ok {
			return fmt.Errorf("pulse: channel %d has no pulse %q", ch, name)
		}
		c.LastPulse = name
		ramp = env.Length / 2
		p.Addr = ip(env.BaseAddr / 16)
		p.Length = ip(ramp)
		p.Stdysel = ip(1)
	}

	r, err := s.SetPulseRegisters(ch, p, t)
	if err != nil {
		return err
	}

	if play {
		if env == nil {
			env, _, _ = c.Resolve("")
			ramp = env.Length / 2
		}
		start := c.TimeCursor
		if t != nil {
			start = *t
		}
		gain := 0
		if p.Gain != nil {
			gain = *p.Gain
		}
		middle := env.MiddleLength

		rampUp := p
		rampUp.Addr = ip(env.BaseAddr / 16)
		rampUp.Length = ip(ramp)
		rampUp.Outsel = ip(0)
		if _, err := s.SetPulseRegisters(ch, rampUp, &start); err != nil {
			return err
		}
		s.emitSet(ch, r, fmt.Sprintf("ch = %d flat-top ramp-up @t = %d", ch, start))

		midParams := p
		midParams.Addr = ip(env.BaseAddr/16 + ramp)
		midParams.Gain = ip(gain / 2)
		midParams.Length = ip(middle)
		midParams.Outsel = ip(1)
		if _, err := s.SetPulseRegisters(ch, midParams, &start); err != nil {
			return err
		}
		s.emitSet(ch, r, fmt.Sprintf("ch = %d flat-top middle @t = %d", ch, start))

		downT := start + ramp + middle
		rampDown := p
		rampDown.Addr = ip(env.BaseAddr/16 + ramp)
		rampDown.Length = ip(ramp)
		rampDown.Outsel = ip(0)
		if _, err := s.SetPulseRegisters(ch, rampDown, &downT); err != nil {
			return err
		}
		s.emitSet(ch, r, fmt.Sprintf("ch = %d flat-top ramp-down @t = %d", ch, downT))

		c.TimeCursor = start + middle + 2*ramp
	}
	return nil
}

// Pulse dispatches to ConstPulse/ArbPulse/FlatTopPulse by the named
// envelope's registered style (spec.md §4.E pulse).
func (s *Sequencer) Pulse(ch int, name string, p Params, t *int, play bool) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	env, _, ok := c.Resolve(name)
	if !ok {
		return fmt.Errorf("pulse: channel %d has no pulse %q", ch, name)
	}
	switch env.Style {
	case StyleConst:
		return s.ConstPulse(ch, name, p, t, play)
	case StyleArb:
		return s.ArbPulse(ch, name, p, t, play)
	case StyleFlatTop:
		return s.FlatTopPulse(ch, name, p, t, play)
	default:
		return fmt.Errorf("pulse: unknown style %v", env.Style)
	}
}

// Align sets every channel's cursor to the maximum over all channels.
func (s *Sequencer) Align() {
	max := 0
	for ch := 1; ch <= 8; ch++ {
		if c := s.Channels[ch]; c.TimeCursor > max {
			max = c.TimeCursor
		}
	}
	for ch := 1; ch <= 8; ch++ {
		s.Channels[ch].TimeCursor = max
	}
}

// SyncAll emits a synci advancing the TP's global time by the maximum
// channel cursor plus offset, then resets every cursor to 0. No-op if the
// resulting delay would be non-positive.
func (s *Sequencer) SyncAll(offset int) {
	max := 0
	for ch := 1; ch <= 8; ch++ {
		if c := s.Channels[ch].TimeCursor; c > max {
			max = c
		}
	}
	if max+offset <= 0 {
		return
	}
	s.Program.Synci(max+offset, "sync_all")
	for ch := 1; ch <= 8; ch++ {
		s.Channels[ch].TimeCursor = 0
	}
}

// TriggerADC encodes mask (bit 14 = ADC0, bit 15 = ADC1) and emits a
// channel-0 output pulse at t+offsetTicks, zeroed 10 ticks later
// (spec.md §4.E trigger_adc).
func (s *Sequencer) TriggerADC(mask, offsetTicks, t int) {
	const rOut = 31
	out := mask << 14
	s.Program.Regwi(0, rOut, out, fmt.Sprintf("out = 0b%016b", out))
	s.Program.Seti(0, 0, rOut, t+offsetTicks, fmt.Sprintf("ch = 0 out = $%d @t = %d", rOut, t+offsetTicks))
	s.Program.Regwi(0, rOut, 0, "out = 0")
	s.Program.Seti(0, 0, rOut, t+offsetTicks+10, fmt.Sprintf("ch = 0 out = $%d @t = %d", rOut, t+offsetTicks+10))
}
