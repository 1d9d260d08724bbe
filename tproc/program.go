package tproc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Program is an append-only instruction list plus a label table. It is
// mutated only during the construction phase (spec.md §5 "Shared
// resources") and frozen once Compile is called.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
	err          error // first error encountered during construction, sticky
}

// NewProgram returns an empty program ready for emit/label calls.
func NewProgram() *Program {
	return &Program{Labels: map[string]int{}}
}

// Err returns the first error recorded by Emit (or a chained helper like
// SafeRegwi), if any. A Program that has never failed returns nil.
func (p *Program) Err() error {
	return p.err
}

func (p *Program) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Emit appends one instruction record. An unrecognized mnemonic records
// ErrUnknownInstruction on the program (via Err) and is not appended.
func (p *Program) Emit(mnemonic string, comment string, args ...interface{}) *Program {
	if _, ok := Defs[mnemonic]; !ok {
		p.fail(newErr(UnknownInstruction, "%q", mnemonic))
		return p
	}
	p.Instructions = append(p.Instructions, Instruction{
		Mnemonic: mnemonic,
		Args:     args,
		Comment:  comment,
	})
	return p
}

// Label binds name to the current length of the program (the index the
// next-emitted instruction will occupy).
func (p *Program) Label(name string) *Program {
	p.Labels[name] = len(p.Instructions)
	return p
}

// SafeRegwi writes a full 32-bit immediate through a register without ever
// emitting a regwi immediate >= 2^30 (spec.md §4.C). imm must be in
// [0, 2^32).
func (p *Program) SafeRegwi(page, reg int, imm int, comment string) *Program {
	if imm < (1 << 30) {
		return p.Regwi(page, reg, imm, comment)
	}
	p.Regwi(page, reg, imm>>2, comment)
	p.Bitwi(page, reg, reg, "<<", 2, "")
	if imm%4 != 0 {
		p.Mathi(page, reg, reg, "+", imm%4, "")
	}
	return p
}

// Compile lowers every instruction to its 64-bit word, in program order.
// Compile is deterministic: the same Program always yields the same words.
func (p *Program) Compile() ([]uint64, error) {
	if p.err != nil {
		return nil, p.err
	}
	words := make([]uint64, len(p.Instructions))
	for i, inst := range p.Instructions {
		w, err := Encode(inst, p.Labels)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return words, nil
}

// FormatASM reconstructs a human-readable listing: one instruction per
// line, an optional "name:" label prefix, and an optional "// comment"
// suffix, matching qsystem2_asm.py's ASM_Program.asm().
func (p *Program) FormatASM() string {
	labelAt := make(map[int]string, len(p.Labels))
	maxLabelLen := 0
	for name, idx := range p.Labels {
		labelAt[idx] = name
		if len(name) > maxLabelLen {
			maxLabelLen = len(name)
		}
	}

	lines := make([]string, len(p.Instructions))
	for i, inst := range p.Instructions {
		d := Defs[inst.Mnemonic]
		body := inst.Mnemonic
		if d.Repr != "" {
			body += " " + fmt.Sprintf(d.Repr, inst.Args...)
		}
		body += ";"

		prefix := strings.Repeat(" ", maxLabelLen+2)
		if name, ok := labelAt[i]; ok {
			prefix = name + ": " + strings.Repeat(" ", maxLabelLen+2-len(name)-2)
		}
		line := prefix + body
		if inst.Comment != "" {
			pad := 48 - len(line)
			if pad < 1 {
				pad = 1
			}
			line += strings.Repeat(" ", pad) + "// " + inst.Comment
		}
		lines[i] = line
	}

	var b strings.Builder
	b.WriteString("\n// Program\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// CompareWith decodes a flat little-endian uint64 binary at path and
// compares it word-by-word against Compile()'s output. It returns the
// index of the first mismatch, or -1 if the programs are identical
// (spec.md §4.C compare_with).
func (p *Program) CompareWith(path string) (int, error) {
	words, err := p.Compile()
	if err != nil {
		return -1, err
	}

	f, err := os.Open(path)
	if err != nil {
		return -1, newErr(DeviceError, "opening %s: %v", path, err).withWrapped(err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var ref []uint64
	for {
		var w uint64
		err := binary.Read(r, binary.LittleEndian, &w)
		if err == io.EOF {
			break
		}
		if err != nil {
			return -1, newErr(DeviceError, "reading %s: %v", path, err).withWrapped(err)
		}
		ref = append(ref, w)
	}

	if len(ref) != len(words) {
		return 0, fmt.Errorf("tproc: programs are different lengths (got %d, reference %d)", len(words), len(ref))
	}
	for i := range words {
		if words[i] != ref[i] {
			return i, nil
		}
	}
	return -1, nil
}

// HexDump compiles the program and renders each word as a zero-padded
// 16-digit hex line, one instruction per line (qsystem2_asm.py's
// ASM_Program.hex()).
func (p *Program) HexDump() (string, error) {
	words, err := p.Compile()
	if err != nil {
		return "", err
	}
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = fmt.Sprintf("%016x", w)
	}
	return strings.Join(lines, "\n"), nil
}

// BinDump compiles the program and renders each word as a 64-digit binary
// string, one instruction per line (qsystem2_asm.py's ASM_Program.bin()).
func (p *Program) BinDump() (string, error) {
	words, err := p.Compile()
	if err != nil {
		return "", err
	}
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = fmt.Sprintf("%064b", w)
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Error) withWrapped(err error) *Error {
	clone := *e
	clone.Wrapped = err
	return &clone
}

// sortedLabelNames is a small helper kept for debugging/dump tooling that
// wants labels in program order rather than map iteration order.
func (p *Program) sortedLabelNames() []string {
	names := make([]string, 0, len(p.Labels))
	for name := range p.Labels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return p.Labels[names[i]] < p.Labels[names[j]] })
	return names
}
