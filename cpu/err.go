package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOutOfRange   = errors.New(f("out of range"))
	ErrUnsupported  = errors.New(f("unsupported operation"))
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrLoad         = errors.New(f("program image exceeds memory"))

	// Instruction cycle errors
	ErrOpcodeFetch   = errors.New(f("fetch"))
	ErrOpcodeOperand = errors.New(f("operand"))
	ErrOpcodeAlu     = errors.New(f("alu"))
	ErrOpcodeStack   = errors.New(f("stack"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of byte range"))
	ErrBinarySyntax       = errors.New(f("binary literal syntax"))
)

// ErrFault is the fatal error that stopped the CPU, and where it happened.
type ErrFault struct {
	Pc     int    // Address the faulting opcode was fetched from.
	Opcode Opcode // Faulting opcode, if it could be fetched.
	Err    error
}

func (err *ErrFault) Error() string {
	return f("pc 0x%02x opcode 0x%02x %v", err.Pc, uint8(err.Opcode), err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
