// Package pulse implements the per-channel envelope registry and the
// sequencer that emits register-setup and channel-output instructions for
// const/arb/flat-top pulses on top of the tproc instruction encoder.
package pulse

import (
	"github.com/jbrzusto/tprocgo/device"
	"github.com/jbrzusto/tprocgo/tproc"
)

// Style tags an envelope record's shape (spec.md §9 "Dynamic-style pulse
// records").
type Style int

const (
	StyleConst Style = iota
	StyleArb
	StyleFlatTop
)

func (s Style) String() string {
	switch s {
	case StyleConst:
		return "const"
	case StyleArb:
		return "arb"
	case StyleFlatTop:
		return "flat_top"
	default:
		return "unknown"
	}
}

// Envelope is one registered pulse shape on one channel. CONST envelopes
// carry no samples; ARB and FLAT_TOP envelopes require equal-length,
// 16-sample-block-aligned I/Q sample arrays.
type Envelope struct {
	Style    Style
	ISamples []float64
	QSamples []float64
	BaseAddr int // samples, bump-pointer allocated per channel
	Length   int // in 16-sample blocks for ARB/FLAT_TOP; raw TP ticks for CONST

	// MiddleLength is the constant-middle section's length in TP ticks,
	// used only by FLAT_TOP (the ramp-up/ramp-down lengths instead come
	// from Length/2, i.e. half the envelope's block count).
	MiddleLength int
}

// Channel holds the envelope registry and timeline state for one DAC
// channel (spec.md §3 "Channel state").
type Channel struct {
	Index        int
	NextAddr     int
	Pulses       map[string]*Envelope
	LastPulse    string
	TimeCursor   int
}

// NewChannel returns an empty channel with an empty pulse registry.
func NewChannel(index int) *Channel {
	return &Channel{Index: index, Pulses: map[string]*Envelope{}}
}

// RegisterPulse records an envelope under name on ch, per spec.md §4.D.
// For ARB/FLAT_TOP, iSamples and qSamples must be equal length and a
// positive multiple of 16; if only one is given the other is zero-filled.
// Registering CONST requires lengthTicks (TP ticks) and no samples.
// For FLAT_TOP, lengthTicks additionally sets the constant middle
// section's length; the ramp-up/ramp-down lengths come from the sample
// count instead (half the envelope's 16-sample block count).
func (ch *Channel) RegisterPulse(name string, style Style, iSamples, qSamples []float64, lengthTicks int) error {
	if style == StyleConst {
		ch.Pulses[name] = &Envelope{Style: StyleConst, BaseAddr: 0, Length: lengthTicks}
		return nil
	}

	i, q := iSamples, qSamples
	switch {
	case i == nil && q != nil:
		i = make([]float64, len(q))
	case q == nil && i != nil:
		q = make([]float64, len(i))
	}
	if len(i) != len(q) || len(i) == 0 || len(i)%16 != 0 {
		return tproc.NewEnvelopeLengthError(len(i), len(q))
	}

	env := &Envelope{
		Style:        style,
		ISamples:     i,
		QSamples:     q,
		BaseAddr:     ch.NextAddr,
		Length:       len(i) / 16,
		MiddleLength: lengthTicks,
	}
	ch.Pulses[name] = env
	ch.NextAddr += len(i)
	return nil
}

// Resolve returns the envelope for name, or the last-played envelope when
// name is empty.
func (ch *Channel) Resolve(name string) (*Envelope, string, bool) {
	if name == "" {
		name = ch.LastPulse
	}
	env, ok := ch.Pulses[name]
	return env, name, ok
}

// Int16Samples converts an envelope's float I/Q samples to the 16-bit
// signed integers the device façade expects.
func (e *Envelope) Int16Samples() (i []int16, q []int16) {
	i = make([]int16, len(e.ISamples))
	q = make([]int16, len(e.QSamples))
	for idx, v := range e.ISamples {
		i[idx] = int16(v)
	}
	for idx, v := range e.QSamples {
		q[idx] = int16(v)
	}
	return i, q
}

// UploadEnvelopes pushes every ARB/FLAT_TOP envelope registered on every
// channel to dev, at its bump-pointer-allocated BaseAddr (spec.md §4.D/§4.F
// step 1 "ensure envelopes are uploaded"). CONST envelopes carry no samples
// and are skipped.
func UploadEnvelopes(s *Sequencer, dev device.Device) error {
	for ch := 1; ch <= 8; ch++ {
		c, ok := s.Channels[ch]
		if !ok {
			continue
		}
		for _, env := range c.Pulses {
			if env.Style == StyleConst {
				continue
			}
			i, q := env.Int16Samples()
			if err := dev.LoadEnvelope(ch, i, q, env.BaseAddr); err != nil {
				return err
			}
		}
	}
	return nil
}
