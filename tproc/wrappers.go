package tproc

// Thin, one-line wrapper methods, one per mnemonic in Defs, all routing
// through Emit. qsystem2_asm.py generates these at call time via
// __getattr__; Go has no equivalent dynamic-dispatch hook, so they are
// written out explicitly here instead (spec.md §9 "Attribute-dispatch
// mnemonics").

// Pushi pushes register page:reg onto the page's hardware stack, tagged
// with aux and imm.
func (p *Program) Pushi(page, reg, aux, imm int, comment string) *Program {
	return p.Emit("pushi", comment, page, reg, aux, imm)
}

// Popi pops the top of page's hardware stack into reg.
func (p *Program) Popi(page, reg int, comment string) *Program {
	return p.Emit("popi", comment, page, reg)
}

// Mathi computes page:src op imm and writes the result to page:dst.
func (p *Program) Mathi(page, dst, src int, op string, imm int, comment string) *Program {
	return p.Emit("mathi", comment, page, dst, src, op, imm)
}

// Seti schedules channel ch's output register page:reg to take effect at
// time t.
func (p *Program) Seti(ch, page, reg, t int, comment string) *Program {
	return p.Emit("seti", comment, ch, page, reg, t)
}

// Synci advances every channel's time cursor by t.
func (p *Program) Synci(t int, comment string) *Program {
	return p.Emit("synci", comment, t)
}

// Waiti blocks page until time t.
func (p *Program) Waiti(page, t int, comment string) *Program {
	return p.Emit("waiti", comment, page, t)
}

// Bitwi computes page:src op imm bitwise and writes the result to page:dst.
func (p *Program) Bitwi(page, dst, src int, op string, imm int, comment string) *Program {
	return p.Emit("bitwi", comment, page, dst, src, op, imm)
}

// Memri loads data memory address imm into page:reg.
func (p *Program) Memri(page, reg, imm int, comment string) *Program {
	return p.Emit("memri", comment, page, reg, imm)
}

// Memwi stores page:reg to data memory address imm.
func (p *Program) Memwi(page, reg, imm int, comment string) *Program {
	return p.Emit("memwi", comment, page, reg, imm)
}

// Regwi loads the immediate imm into page:reg.
func (p *Program) Regwi(page, reg, imm int, comment string) *Program {
	return p.Emit("regwi", comment, page, reg, imm)
}

// Setbi loads a 21-bit mode code imm into page:reg.
func (p *Program) Setbi(page, reg, imm int, comment string) *Program {
	return p.Emit("setbi", comment, page, reg, imm)
}

// Loopnz decrements page:reg and jumps to label while it remains nonzero.
func (p *Program) Loopnz(page, reg int, label string, comment string) *Program {
	return p.Emit("loopnz", comment, page, reg, label)
}

// End halts the processor.
func (p *Program) End(comment string) *Program {
	return p.Emit("end", comment)
}

// Condj jumps to label if page:src1 op page:src2 is true.
func (p *Program) Condj(page, src1 int, op string, src2 int, label string, comment string) *Program {
	return p.Emit("condj", comment, page, src1, op, src2, label)
}

// Math computes page:src1 op page:src2 and writes the result to page:dst.
func (p *Program) Math(page, dst, src1 int, op string, src2 int, comment string) *Program {
	return p.Emit("math", comment, page, dst, src1, op, src2)
}

// Set schedules channel ch's full output register set (page, freq, phase,
// addr, gain, mode registers) to take effect at the time held in tReg.
func (p *Program) Set(ch, page, freqReg, phaseReg, addrReg, gainReg, modeReg, tReg int, comment string) *Program {
	return p.Emit("set", comment, ch, page, freqReg, phaseReg, addrReg, gainReg, modeReg, tReg)
}

// Sync blocks every channel until page's time cursor reaches t.
func (p *Program) Sync(page, t int, comment string) *Program {
	return p.Emit("sync", comment, page, t)
}

// Read reads channel ch's status/data (selected by op) into page:dst.
func (p *Program) Read(ch, page int, op string, dst int, comment string) *Program {
	return p.Emit("read", comment, ch, page, op, dst)
}

// Wait blocks page until time t. reg appears in the FormatASM listing but
// is not encoded: wait's layout in isa.go places only page and t.
func (p *Program) Wait(page, t, reg int, comment string) *Program {
	return p.Emit("wait", comment, page, t, reg)
}

// Bitw computes page:src1 op page:src2 bitwise and writes the result to
// page:dst.
func (p *Program) Bitw(page, dst, src1 int, op string, src2 int, comment string) *Program {
	return p.Emit("bitw", comment, page, dst, src1, op, src2)
}

// Memr loads data memory address held in page:addrReg into page:dst.
func (p *Program) Memr(page, dst, addrReg int, comment string) *Program {
	return p.Emit("memr", comment, page, dst, addrReg)
}

// Memw stores page:srcReg to the data memory address held in page:addrReg.
func (p *Program) Memw(page, srcReg, addrReg int, comment string) *Program {
	return p.Emit("memw", comment, page, srcReg, addrReg)
}

// Setb loads the mode code held in page:srcReg into page:dst.
func (p *Program) Setb(page, dst, srcReg int, comment string) *Program {
	return p.Emit("setb", comment, page, dst, srcReg)
}
