package tproc

// Class is the instruction format family, matching the tProc's four
// word shapes.
type Class int

const (
	IMM   Class = iota // immediate-bearing: last arg is folded as a 31-bit signed immediate
	JUMP1              // loopnz/end: a counted-loop/halt instruction
	JUMP2              // condj: a conditional jump with a compare operator
	REG                // pure register-to-register instruction
)

// opTable selects which operator table (see operators.go) resolves an
// instruction's operator-token argument, if it has one.
type opTable int

const (
	noOpTable opTable = iota
	mathCompareTable
	bitwiseTable
)

// field places args[ArgIndex] (after any immediate/label/operator
// substitution) into the word at bit offset Shift. The same ArgIndex may
// appear in more than one field (loopnz duplicates its counter-register
// argument at two shifts; §9 Open Question preserves this).
type field struct {
	ArgIndex int
	Shift    uint
}

// def is the static metadata for one mnemonic: its word class, 8-bit
// opcode, bit-field layout, and (for format_asm) print template.
type def struct {
	Class   Class
	Opcode  uint8
	Layout  []field
	Repr    string // Go fmt verb template, args substituted positionally as %v
	LabelArg int    // index into Args holding a label name, or -1
	OpArg    int    // index into Args holding an operator token, or -1
	OpTable  opTable
}

// Defs is the full instruction definition table, keyed by mnemonic. Ported
// from original_source/src/qsystem2_asm.py's `instructions` dict.
var Defs = map[string]def{
	"pushi": {Class: IMM, Opcode: 0b00010000, Layout: []field{{0, 53}, {1, 41}, {2, 36}, {3, 0}}, Repr: "%v, $%v, $%v, %v", LabelArg: -1, OpArg: -1},
	"popi":  {Class: IMM, Opcode: 0b00010001, Layout: []field{{0, 53}, {1, 41}}, Repr: "%v, $%v", LabelArg: -1, OpArg: -1},
	"mathi": {Class: IMM, Opcode: 0b00010010, Layout: []field{{0, 53}, {1, 41}, {2, 36}, {3, 46}, {4, 0}}, Repr: "%v, $%v, $%v, %v, %v", LabelArg: -1, OpArg: 3, OpTable: mathCompareTable},
	"seti":  {Class: IMM, Opcode: 0b00010011, Layout: []field{{1, 53}, {0, 50}, {2, 36}, {3, 0}}, Repr: "%v, %v, $%v, %v", LabelArg: -1, OpArg: -1},
	"synci": {Class: IMM, Opcode: 0b00010100, Layout: []field{{0, 0}}, Repr: "%v", LabelArg: -1, OpArg: -1},
	"waiti": {Class: IMM, Opcode: 0b00010101, Layout: []field{{0, 50}, {1, 0}}, Repr: "%v, %v", LabelArg: -1, OpArg: -1},
	"bitwi": {Class: IMM, Opcode: 0b00010110, Layout: []field{{0, 53}, {3, 46}, {1, 41}, {2, 36}, {4, 0}}, Repr: "%v, $%v, $%v %v %v", LabelArg: -1, OpArg: 3, OpTable: bitwiseTable},
	"memri": {Class: IMM, Opcode: 0b00010111, Layout: []field{{0, 53}, {1, 41}, {2, 0}}, Repr: "%v, $%v, %v", LabelArg: -1, OpArg: -1},
	"memwi": {Class: IMM, Opcode: 0b00011000, Layout: []field{{0, 53}, {1, 31}, {2, 0}}, Repr: "%v, $%v, %v", LabelArg: -1, OpArg: -1},
	"regwi": {Class: IMM, Opcode: 0b00011001, Layout: []field{{0, 53}, {1, 41}, {2, 0}}, Repr: "%v, $%v, %v", LabelArg: -1, OpArg: -1},
	"setbi": {Class: IMM, Opcode: 0b00011010, Layout: []field{{0, 53}, {1, 41}, {2, 0}}, Repr: "%v, $%v, %v", LabelArg: -1, OpArg: -1},

	// Open Question (spec.md §9): arg index 1 is placed at both shift 41 and
	// shift 36. The mandatory flag (loopnzFlag, bit 49) is OR-ed in
	// separately by encoder.go. Both placements are preserved exactly as the
	// source table specifies.
	"loopnz": {Class: JUMP1, Opcode: 0b00110000, Layout: []field{{0, 53}, {1, 41}, {1, 36}, {2, 0}}, Repr: "%v, $%v, @%v", LabelArg: 2, OpArg: -1},
	"end":    {Class: JUMP1, Opcode: 0b00111111, Layout: nil, Repr: "", LabelArg: -1, OpArg: -1},

	"condj": {Class: JUMP2, Opcode: 0b00110001, Layout: []field{{0, 53}, {2, 46}, {1, 36}, {3, 31}, {4, 0}}, Repr: "%v, $%v, %v, $%v, @%v", LabelArg: 4, OpArg: 2, OpTable: mathCompareTable},

	"math": {Class: REG, Opcode: 0b01010000, Layout: []field{{0, 53}, {3, 46}, {1, 41}, {2, 36}, {4, 31}}, Repr: "%v, $%v, $%v, %v, $%v", LabelArg: -1, OpArg: 3, OpTable: mathCompareTable},
	"set":  {Class: REG, Opcode: 0b01010001, Layout: []field{{1, 53}, {0, 50}, {2, 36}, {7, 31}, {3, 26}, {4, 21}, {5, 16}, {6, 11}}, Repr: "%v, %v, $%v, $%v, $%v, $%v, $%v, $%v", LabelArg: -1, OpArg: -1},
	"sync": {Class: REG, Opcode: 0b01010010, Layout: []field{{0, 53}, {1, 31}}, Repr: "%v, $%v", LabelArg: -1, OpArg: -1},
	"read": {Class: REG, Opcode: 0b01010011, Layout: []field{{1, 53}, {0, 50}, {2, 46}, {3, 41}}, Repr: "%v, %v, %v $%v", LabelArg: -1, OpArg: 2, OpTable: mathCompareTable},
	"wait": {Class: REG, Opcode: 0b01010100, Layout: []field{{0, 53}, {1, 31}}, Repr: "%v, %v, $%v", LabelArg: -1, OpArg: -1},
	"bitw": {Class: REG, Opcode: 0b01010101, Layout: []field{{0, 53}, {1, 41}, {2, 36}, {3, 46}, {4, 31}}, Repr: "%v, $%v, $%v %v $%v", LabelArg: -1, OpArg: 3, OpTable: bitwiseTable},
	"memr": {Class: REG, Opcode: 0b01010110, Layout: []field{{0, 53}, {1, 41}, {2, 36}}, Repr: "%v, $%v, $%v", LabelArg: -1, OpArg: -1},
	"memw": {Class: REG, Opcode: 0b01010111, Layout: []field{{0, 53}, {2, 36}, {1, 31}}, Repr: "%v, $%v, $%v", LabelArg: -1, OpArg: -1},
	"setb": {Class: REG, Opcode: 0b01011000, Layout: []field{{0, 53}, {2, 36}, {1, 31}}, Repr: "%v, $%v, $%v", LabelArg: -1, OpArg: -1},
}

// loopnzFlag is the mandatory bit OR-ed into every loopnz word (spec.md §4.B
// step 7); 0b1000 at bit offset 46.
const loopnzFlag uint64 = 0b1000 << 46
