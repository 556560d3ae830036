// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ls8/internal"
)

// MAX_EQUATE_DEPTH bounds equates that refer to other equates.
const MAX_EQUATE_DEPTH = 8

// Assembler is a two pass assembler for LS-8 source.
//
// Each line holds one item, with '#' or ';' starting a comment:
//
//	10000010              ; binary literal bytes, the classic image format
//	Loop: LDI R0,'A'      ; label, mnemonic and operands
//	.equ COUNT 10         ; equate
//	DB 1, 2, $(COUNT*2)   ; data bytes
//
// Operands are registers (R0-R7, SP), numbers in Go syntax, character
// literals, labels, equates, or $(...) Starlark expressions over the labels
// and equates. Labels may be used before they are defined.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // Assembled lines.

	predefine map[string]string
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	resolved map[string]int64 // Integer equates already evaluated.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]int{
	"R0": 0,
	"R1": 1,
	"R2": 2,
	"R3": 3,
	"R4": 4,
	"R5": 5,
	"R6": 6,
	"R7": 7,
	"SP": REG_SP,
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reBinary    = regexp.MustCompile(`^[01]+$`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reIdent     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// isBinaryWord returns true if word is a binary literal.
func isBinaryWord(word string) bool {
	return reBinary.MatchString(word)
}

// isData returns true if the mnemonic declares data bytes.
func isData(mnemonic string) bool {
	switch strings.ToUpper(mnemonic) {
	case "DB", ".BYTE":
		return true
	}
	return false
}

// expandCharacters replaces 'x' character literals with their value.
func expandCharacters(line string) string {
	return reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})
}

// stripComment removes a '#' or ';' comment.
func stripComment(line string) string {
	if n := strings.IndexAny(line, "#;"); n >= 0 {
		line = line[:n]
	}
	return strings.TrimSpace(line)
}

// splitWords splits a line on spaces and commas, keeping $(...) together.
func splitWords(line string) (words []string) {
	var word strings.Builder
	depth := 0

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for n := 0; n < len(line); n++ {
		c := line[n]
		switch {
		case c == '$' && n+1 < len(line) && line[n+1] == '(':
			depth++
			word.WriteString("$(")
			n++
			continue
		case c == '(' && depth > 0:
			depth++
		case c == ')' && depth > 0:
			depth--
		case depth == 0 && (c == ' ' || c == '\t' || c == ','):
			flush()
			continue
		}
		word.WriteByte(c)
	}
	flush()

	return
}

// parenEval does $(...) evaluations.
func (asm *Assembler) parenEval(expr string, depth int) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for _, name := range reIdent.FindAllString(expr, -1) {
		if _, ok := pred[name]; ok {
			continue
		}
		if addr, ok := asm.Label[name]; ok {
			pred[name] = starlark.MakeInt(addr)
			continue
		}
		if _, ok := asm.Equate[name]; !ok {
			continue
		}
		v, verr := asm.evaluate(name, depth+1)
		if verr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[name] = starlark.MakeInt64(v)
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
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// evaluate returns the integer value of an operand word.
func (asm *Assembler) evaluate(word string, depth int) (value int64, err error) {
	if depth > MAX_EQUATE_DEPTH {
		err = ErrParseNumber(word)
		return
	}

	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2:len(word)-1], depth)
	}

	if addr, ok := asm.Label[word]; ok {
		value = int64(addr)
		return
	}

	if equ, ok := asm.Equate[word]; ok {
		if v, ok := asm.resolved[word]; ok {
			value = v
			return
		}
		value, err = asm.evaluate(equ, depth+1)
		if err == nil && asm.resolved != nil {
			asm.resolved[word] = value
		}
		return
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		if reLabel.MatchString(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseNumber(word)
		}
		return
	}

	return
}

// valueOf returns the byte value of an operand word.
// Negative values down to -128 are stored in two's complement.
func (asm *Assembler) valueOf(word string) (value byte, err error) {
	v, err := asm.evaluate(word, 0)
	if err != nil {
		return
	}

	if v < -128 || v > 255 {
		err = ErrValueRange
		return
	}

	value = byte(v)
	return
}

// registerOf returns the register index named by an operand word.
func (asm *Assembler) registerOf(word string) (reg byte, err error) {
	for range MAX_EQUATE_DEPTH {
		index, ok := regMap[strings.ToUpper(word)]
		if ok {
			reg = byte(index)
			return
		}
		equ, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equ
	}

	err = ErrRegisterInvalid
	return
}

// layoutWords sizes a line of words, defining labels and equates.
// Binary literals are assembled immediately; other lines get zeroed bytes
// that encodeLine fills in once every label is known.
func (asm *Assembler) layoutWords(words []string, lineno int, addr int) (line *Line, err error) {
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrLabelSyntax
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = addr
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	line = &Line{LineNo: lineno, Address: addr, Words: words}

	switch {
	case strings.ToUpper(words[0]) == ".EQU":
		// .equ CONST VALUE
		line = nil
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
	case isData(words[0]):
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		line.Bytes = make([]byte, len(words)-1)
	case isBinaryWord(words[0]):
		for _, word := range words {
			if !isBinaryWord(word) || len(word) > 8 {
				err = ErrBinarySyntax
				return
			}
			var value uint64
			value, err = strconv.ParseUint(word, 2, 8)
			if err != nil {
				return
			}
			line.Bytes = append(line.Bytes, byte(value))
		}
	default:
		op, ok := LookupOpcode(strings.ToUpper(words[0]))
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		argc := op.Decode().Argc
		switch {
		case len(words)-1 < argc:
			err = ErrOpcodeValueMissing
			return
		case len(words)-1 > argc:
			err = ErrOpcodeExtraArgs
			return
		}
		line.Bytes = make([]byte, 1+argc)
	}

	return
}

// encodeLine fills in the bytes of a mnemonic or data line.
func (asm *Assembler) encodeLine(line *Line) (err error) {
	words := line.Words

	switch {
	case isBinaryWord(words[0]):
		// Assembled during layout.
	case isData(words[0]):
		for n, word := range words[1:] {
			line.Bytes[n], err = asm.valueOf(word)
			if err != nil {
				return
			}
		}
	default:
		op, _ := LookupOpcode(strings.ToUpper(words[0]))
		line.Bytes[0] = byte(op)
		for n, kind := range operandKinds(op) {
			word := words[1+n]
			switch kind {
			case operandRegister:
				line.Bytes[1+n], err = asm.registerOf(word)
			case operandImmediate:
				line.Bytes[1+n], err = asm.valueOf(word)
			}
			if err != nil {
				return
			}
		}
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Lines = asm.Lines[:0]
	asm.Label = map[string]int{}
	asm.resolved = map[string]int64{}
	asm.Equate = maps.Collect(internal.ConcatSeq2(
		maps.All(_cpu_defines),
		maps.All(asm.predefine),
	))

	// Pass 1: addresses, labels and equates.
	addr := 0
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1
		line = text

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		words := splitWords(stripComment(expandCharacters(text)))

		var asmLine *Line
		asmLine, err = asm.layoutWords(words, lineno, addr)
		if err != nil {
			return
		}
		if asmLine == nil {
			continue
		}

		asm.Lines = append(asm.Lines, *asmLine)
		addr += len(asmLine.Bytes)
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Pass 2: operands, now that every label is known.
	for n := range asm.Lines {
		asmLine := &asm.Lines[n]
		err = asm.encodeLine(asmLine)
		if err != nil {
			lineno = asmLine.LineNo
			line = strings.Join(asmLine.Words, " ")
			return
		}
	}

	prog = &Program{
		Lines: append([]Line(nil), asm.Lines...),
	}

	return
}
