// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass CHIP-8 assembler.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	addr int // Address of the next generated byte.
}

// Predefine defines a new equate or redefines an existing equate.
// Predefines survive across calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// operandKind classifies a parsed operand.
type operandKind int

const (
	kindValue    = operandKind(iota) // numeric literal
	kindLabel                        // unresolved symbol
	kindRegister                     // v0 - vf
	kindIndex                        // i
	kindFont                         // f
	kindBcd                          // b
	kindIndirect                     // [i]
)

type operand struct {
	kind  operandKind
	value int
	label string
}

// argKind is what an instruction form accepts in one operand slot.
type argKind int

const (
	argReg      = argKind(iota) // any register
	argV0                       // only v0
	argByte                     // 8-bit value
	argNibble                   // 4-bit value
	argAddr                     // 12-bit value or label
	argIndex                    // i
	argFont                     // f
	argBcd                      // b
	argIndirect                 // [i]
)

type form struct {
	op   Op
	args []argKind
}

// formMap lists the accepted operand shapes of each mnemonic.
var formMap = map[string][]form{
	"halt": {{OP_HALT, nil}},
	"cls":  {{OP_CLS, nil}},
	"ret":  {{OP_RET, nil}},
	"jp": {
		{OP_JP, []argKind{argAddr}},
		{OP_JP_V0, []argKind{argV0, argAddr}},
	},
	"call": {{OP_CALL, []argKind{argAddr}}},
	"se": {
		{OP_SE_IMM, []argKind{argReg, argByte}},
		{OP_SE_REG, []argKind{argReg, argReg}},
	},
	"sne": {
		{OP_SNE_IMM, []argKind{argReg, argByte}},
		{OP_SNE_REG, []argKind{argReg, argReg}},
	},
	"ld": {
		{OP_LD_IMM, []argKind{argReg, argByte}},
		{OP_LD_REG, []argKind{argReg, argReg}},
		{OP_LD_I, []argKind{argIndex, argAddr}},
		{OP_LD_F, []argKind{argFont, argReg}},
		{OP_LD_B, []argKind{argBcd, argReg}},
		{OP_LD_MEM_REGS, []argKind{argIndirect, argReg}},
		{OP_LD_REGS_MEM, []argKind{argReg, argIndirect}},
	},
	"add": {
		{OP_ADD_IMM, []argKind{argReg, argByte}},
		{OP_ADD_REG, []argKind{argReg, argReg}},
		{OP_ADD_I, []argKind{argIndex, argReg}},
	},
	"or":   {{OP_OR, []argKind{argReg, argReg}}},
	"and":  {{OP_AND, []argKind{argReg, argReg}}},
	"xor":  {{OP_XOR, []argKind{argReg, argReg}}},
	"sub":  {{OP_SUB, []argKind{argReg, argReg}}},
	"subn": {{OP_SUBN, []argKind{argReg, argReg}}},
	"shr": {
		{OP_SHR, []argKind{argReg, argReg}},
		{OP_SHR, []argKind{argReg}},
	},
	"shl": {
		{OP_SHL, []argKind{argReg, argReg}},
		{OP_SHL, []argKind{argReg}},
	},
	"rnd": {{OP_RND, []argKind{argReg, argByte}}},
	"drw": {{OP_DRW, []argKind{argReg, argReg, argNibble}}},
}

// accepts returns true if the operand can fill the argument slot.
func (ak argKind) accepts(arg operand) bool {
	switch ak {
	case argReg:
		return arg.kind == kindRegister
	case argV0:
		return arg.kind == kindRegister && arg.value == 0
	case argByte, argNibble:
		return arg.kind == kindValue
	case argAddr:
		return arg.kind == kindValue || arg.kind == kindLabel
	case argIndex:
		return arg.kind == kindIndex
	case argFont:
		return arg.kind == kindFont
	case argBcd:
		return arg.kind == kindBcd
	case argIndirect:
		return arg.kind == kindIndirect
	}

	return false
}

// valueOf returns the value of a numeric literal.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// operandOf classifies a single operand word.
func (asm *Assembler) operandOf(word string) (arg operand, err error) {
	lower := strings.ToLower(word)

	switch lower {
	case "i":
		arg.kind = kindIndex
		return
	case "f":
		arg.kind = kindFont
		return
	case "b":
		arg.kind = kindBcd
		return
	case "[i]":
		arg.kind = kindIndirect
		return
	}

	if len(lower) == 2 && lower[0] == 'v' {
		reg, perr := strconv.ParseUint(lower[1:], 16, 4)
		if perr == nil {
			arg.kind = kindRegister
			arg.value = int(reg)
			return
		}
	}

	first := word[0]
	if first == '-' || first == '+' || (first >= '0' && first <= '9') {
		arg.kind = kindValue
		arg.value, err = asm.valueOf(word)
		return
	}

	if !isSymbol(word) {
		err = ErrOperandInvalid
		return
	}

	arg.kind = kindLabel
	arg.label = word
	return
}

var symbolRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func isSymbol(word string) bool {
	return symbolRe.MatchString(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine expands a single line into words, and records any labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !isSymbol(label) {
			err = ErrOperandInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words[1:] {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n+1] = equate
		}
	}

	words[0] = strings.ToLower(words[0])

	return
}

// Parse assembles a source text into a program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.addr = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.SplitN(text, ";", 2)
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if addr < 0 || addr > 0xfff {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrValueRange
			return
		}
		op.Bytes[0] |= uint8(addr>>8) & 0xf
		op.Bytes[1] |= uint8(addr)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// emit appends generated bytes at the current address.
func (asm *Assembler) emit(lineno int, words []string, data []byte, label string) (err error) {
	if asm.addr+len(data) > MEMORY_SIZE {
		err = ErrMemoryRange
		return
	}

	opcode := Opcode{
		LineNo:    lineno,
		Addr:      uint16(asm.addr),
		Words:     words,
		Bytes:     data,
		LinkLabel: label,
	}
	asm.Opcode = append(asm.Opcode, opcode)
	asm.addr += len(data)

	return
}

// parseData handles the .byte and .word directives.
func (asm *Assembler) parseData(words []string, lineno int, size int) (err error) {
	if len(words) < 2 {
		err = ErrOpcodeValueMissing
		return
	}

	var data []byte
	for _, word := range words[1:] {
		var value int
		value, err = asm.valueOf(word)
		if err != nil {
			return
		}
		switch size {
		case 1:
			if value < -0x80 || value > 0xff {
				err = ErrValueRange
				return
			}
			data = append(data, uint8(value))
		case 2:
			if value < -0x8000 || value > 0xffff {
				err = ErrValueRange
				return
			}
			data = append(data, uint8(value>>8), uint8(value))
		}
	}

	return asm.emit(lineno, words, data, "")
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var addr int
		addr, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if addr < 0 || addr > MEMORY_SIZE {
			err = ErrValueRange
			return
		}
		asm.addr = addr
		return
	case ".byte":
		return asm.parseData(words, lineno, 1)
	case ".word":
		return asm.parseData(words, lineno, 2)
	}

	forms, ok := formMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := make([]operand, 0, len(words)-1)
	for _, word := range words[1:] {
		var arg operand
		arg, err = asm.operandOf(word)
		if err != nil {
			return
		}
		args = append(args, arg)
	}

	var match *form
	for n, fm := range forms {
		if len(fm.args) != len(args) {
			continue
		}
		ok := true
		for i, ak := range fm.args {
			if !ak.accepts(args[i]) {
				ok = false
				break
			}
		}
		if ok {
			match = &forms[n]
			break
		}
	}

	if match == nil {
		fewest, most := len(forms[0].args), 0
		for _, fm := range forms {
			fewest = min(fewest, len(fm.args))
			most = max(most, len(fm.args))
		}
		switch {
		case len(args) > most:
			err = ErrOpcodeExtraArgs
		case len(args) < fewest:
			err = ErrOpcodeValueMissing
		default:
			err = ErrOperandInvalid
		}
		return
	}

	var regs []uint8
	var n uint8
	var imm uint16
	var label string

	for i, ak := range match.args {
		arg := args[i]
		switch ak {
		case argReg:
			regs = append(regs, uint8(arg.value))
		case argByte:
			if arg.value < -0x80 || arg.value > 0xff {
				err = ErrValueRange
				return
			}
			imm = uint16(uint8(arg.value))
		case argNibble:
			if arg.value < 0 || arg.value > 0xf {
				err = ErrValueRange
				return
			}
			n = uint8(arg.value)
		case argAddr:
			if arg.kind == kindLabel {
				label = arg.label
				continue
			}
			if arg.value < 0 || arg.value > 0xfff {
				err = ErrValueRange
				return
			}
			imm = uint16(arg.value)
		}
	}

	var x, y uint8
	if len(regs) > 0 {
		x = regs[0]
		// shr vx and shl vx shift in place.
		y = regs[0]
	}
	if len(regs) > 1 {
		y = regs[1]
	}

	code := MakeCode(match.op, x, y, n, imm)

	return asm.emit(lineno, words, []byte{uint8(code >> 8), uint8(code)}, label)
}
