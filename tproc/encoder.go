package tproc

import "fmt"

// Instruction is one record in a program: a mnemonic, its ordered argument
// list, and an optional human-readable comment. Args are either small
// non-negative integers (register indices, page numbers, immediates) or,
// for the handful of mnemonics that need one, a string: a label name (for
// loopnz/condj) or a math/compare/bitwise operator token.
type Instruction struct {
	Mnemonic string
	Args     []interface{}
	Comment  string
}

// Encode lowers one Instruction into its 64-bit machine word, given the
// label table resolved by the enclosing Program. It implements spec.md
// §4.B exactly: immediate folding for IMM-class instructions, label and
// operator-token substitution, bit-field placement, and the loopnz flag.
func Encode(inst Instruction, labels map[string]int) (uint64, error) {
	d, ok := Defs[inst.Mnemonic]
	if !ok {
		return 0, newErr(UnknownInstruction, "%q", inst.Mnemonic)
	}

	args := make([]int64, len(inst.Args))
	for i, a := range inst.Args {
		switch i {
		case d.LabelArg:
			name, ok := a.(string)
			if !ok {
				return 0, fmt.Errorf("tproc: %s arg %d: expected label name, got %T", inst.Mnemonic, i, a)
			}
			idx, ok := labels[name]
			if !ok {
				return 0, newErr(UnknownLabel, "%q", name)
			}
			args[i] = int64(idx)
		case d.OpArg:
			token, ok := a.(string)
			if !ok {
				return 0, fmt.Errorf("tproc: %s arg %d: expected operator token, got %T", inst.Mnemonic, i, a)
			}
			code, ok := d.OpTable.lookup(token)
			if !ok {
				return 0, newErr(UnknownOperator, "%q", token)
			}
			args[i] = int64(code)
		default:
			v, err := toInt64(a)
			if err != nil {
				return 0, fmt.Errorf("tproc: %s arg %d: %w", inst.Mnemonic, i, err)
			}
			args[i] = v
		}
	}

	if d.Class == IMM {
		if len(args) == 0 {
			return 0, fmt.Errorf("tproc: %s: IMM instruction has no immediate argument", inst.Mnemonic)
		}
		last := len(args) - 1
		folded, err := foldImmediate(args[last])
		if err != nil {
			return 0, err
		}
		args[last] = int64(folded)
	}

	word := uint64(d.Opcode) << 56
	for _, f := range d.Layout {
		word |= uint64(args[f.ArgIndex]) << f.Shift
	}

	if inst.Mnemonic == "loopnz" {
		word |= loopnzFlag
	}

	return word, nil
}

// foldImmediate applies spec.md §4.B step 2's two's-complement folding.
func foldImmediate(x int64) (uint64, error) {
	if x >= (1 << 31) {
		return 0, newErr(ImmediateOverflow, "%d >= 2^31", x)
	}
	if x < 0 {
		return uint64((int64(1) << 31) + x), nil
	}
	return uint64(x), nil
}

func toInt64(a interface{}) (int64, error) {
	switch v := a.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unsupported argument type %T (want an integer)", a)
	}
}
