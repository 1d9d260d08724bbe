package tproc

import "fmt"

// Kind identifies one of the error conditions spec'd for the assembler and
// program builder.
type Kind int

const (
	UnknownInstruction Kind = iota
	UnknownLabel
	UnknownOperator
	ImmediateOverflow
	EnvelopeLengthInvalid
	ChannelOutOfRange
	ConfigMissing
	DeviceError
)

func (k Kind) String() string {
	switch k {
	case UnknownInstruction:
		return "UnknownInstruction"
	case UnknownLabel:
		return "UnknownLabel"
	case UnknownOperator:
		return "UnknownOperator"
	case ImmediateOverflow:
		return "ImmediateOverflow"
	case EnvelopeLengthInvalid:
		return "EnvelopeLengthInvalid"
	case ChannelOutOfRange:
		return "ChannelOutOfRange"
	case ConfigMissing:
		return "ConfigMissing"
	case DeviceError:
		return "DeviceError"
	default:
		return "Unknown"
	}
}

// Error is a typed, errors.Is-comparable failure. Two Errors of the same Kind
// compare equal under errors.Is regardless of their Detail/Wrapped contents,
// so callers can do errors.Is(err, tproc.ErrUnknownLabel).
type Error struct {
	Kind    Kind
	Detail  string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is makes every *Error with the same Kind match under errors.Is, so a
// caller can compare against the sentinel ErrXxx values below without
// caring about Detail/Wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// NewEnvelopeLengthError reports a mismatched or unaligned I/Q sample pair
// for an ARB/FLAT_TOP envelope (spec.md §4.D: both arrays must share
// length, and that length must be a positive multiple of 16).
func NewEnvelopeLengthError(iLen, qLen int) *Error {
	return newErr(EnvelopeLengthInvalid, "i_samples len %d, q_samples len %d: must be equal and a positive multiple of 16", iLen, qLen)
}

// NewChannelOutOfRangeError reports a DAC channel index outside 1..8.
func NewChannelOutOfRangeError(ch int) *Error {
	return newErr(ChannelOutOfRange, "channel %d outside 1..8", ch)
}

// NewConfigMissingError reports a required configuration key with no value
// (config.Load fails fast rather than substituting a bogus default).
func NewConfigMissingError(key string) *Error {
	return newErr(ConfigMissing, "required key %q not set", key)
}

// Sentinel values for errors.Is comparisons; Detail/Wrapped are ignored by Is.
var (
	ErrUnknownInstruction   = &Error{Kind: UnknownInstruction}
	ErrUnknownLabel         = &Error{Kind: UnknownLabel}
	ErrUnknownOperator      = &Error{Kind: UnknownOperator}
	ErrImmediateOverflow    = &Error{Kind: ImmediateOverflow}
	ErrEnvelopeLengthInvalid = &Error{Kind: EnvelopeLengthInvalid}
	ErrChannelOutOfRange    = &Error{Kind: ChannelOutOfRange}
	ErrConfigMissing        = &Error{Kind: ConfigMissing}
	ErrDeviceError          = &Error{Kind: DeviceError}
)
