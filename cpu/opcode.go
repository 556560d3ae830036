package cpu

import (
	"fmt"
)

// Opcode is the first byte of an instruction.
type Opcode uint8

// Opcode bit fields, AABCDDDD.
const (
	OPCODE_ARGC_SHIFT = 6           // AA: operand count.
	OPCODE_ALU        = 0b0010_0000 // B: ALU class.
	OPCODE_SETS_PC    = 0b0001_0000 // C: handler sets the PC.
	OPCODE_ID_MASK    = 0b0000_1111 // DDDD: operation identifier.
)

// General operations.
const (
	OP_NOP  = Opcode(0b0000_0000)
	OP_HLT  = Opcode(0b0000_0001)
	OP_RET  = Opcode(0b0001_0001)
	OP_PUSH = Opcode(0b0100_0101)
	OP_POP  = Opcode(0b0100_0110)
	OP_PRN  = Opcode(0b0100_0111)
	OP_PRA  = Opcode(0b0100_1000)
	OP_CALL = Opcode(0b0101_0000)
	OP_JMP  = Opcode(0b0101_0100)
	OP_JEQ  = Opcode(0b0101_0101)
	OP_JNE  = Opcode(0b0101_0110)
	OP_JGT  = Opcode(0b0101_0111)
	OP_JLT  = Opcode(0b0101_1000)
	OP_JLE  = Opcode(0b0101_1001)
	OP_JGE  = Opcode(0b0101_1010)
	OP_LDI  = Opcode(0b1000_0010)
	OP_LD   = Opcode(0b1000_0011)
	OP_ST   = Opcode(0b1000_0100)
)

// ALU operations, as opcodes.
const (
	OP_ADD = Opcode(0b1010_0000)
	OP_SUB = Opcode(0b1010_0001)
	OP_MUL = Opcode(0b1010_0010)
	OP_DIV = Opcode(0b1010_0011)
	OP_MOD = Opcode(0b1010_0100)
	OP_INC = Opcode(0b0110_0101)
	OP_DEC = Opcode(0b0110_0110)
	OP_CMP = Opcode(0b1010_0111)
	OP_AND = Opcode(0b1010_1000)
	OP_NOT = Opcode(0b0110_1001)
	OP_OR  = Opcode(0b1010_1010)
	OP_XOR = Opcode(0b1010_1011)
	OP_SHL = Opcode(0b1010_1100)
	OP_SHR = Opcode(0b1010_1101)
)

// AluOp is the operation identifier of an ALU class opcode.
type AluOp uint8

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_ADD = AluOp(0x0) // ADD
	ALU_SUB = AluOp(0x1) // SUB
	ALU_MUL = AluOp(0x2) // MUL
	ALU_DIV = AluOp(0x3) // DIV
	ALU_MOD = AluOp(0x4) // MOD
	ALU_INC = AluOp(0x5) // INC
	ALU_DEC = AluOp(0x6) // DEC
	ALU_CMP = AluOp(0x7) // CMP
	ALU_AND = AluOp(0x8) // AND
	ALU_NOT = AluOp(0x9) // NOT
	ALU_OR  = AluOp(0xa) // OR
	ALU_XOR = AluOp(0xb) // XOR
	ALU_SHL = AluOp(0xc) // SHL
	ALU_SHR = AluOp(0xd) // SHR

	alu_op_count = 0xe
)

// Arity returns the number of register operands of the ALU operation.
func (op AluOp) Arity() int {
	switch op {
	case ALU_INC, ALU_DEC, ALU_NOT:
		return 1
	}
	return 2
}

// Opcode returns the instruction byte that selects the ALU operation.
func (op AluOp) Opcode() Opcode {
	return Opcode(op.Arity()<<OPCODE_ARGC_SHIFT | OPCODE_ALU | int(op&OPCODE_ID_MASK))
}

// generalName maps the general operations to their mnemonics.
var generalName = map[Opcode]string{
	OP_NOP:  "NOP",
	OP_HLT:  "HLT",
	OP_RET:  "RET",
	OP_PUSH: "PUSH",
	OP_POP:  "POP",
	OP_PRN:  "PRN",
	OP_PRA:  "PRA",
	OP_CALL: "CALL",
	OP_JMP:  "JMP",
	OP_JEQ:  "JEQ",
	OP_JNE:  "JNE",
	OP_JGT:  "JGT",
	OP_JLT:  "JLT",
	OP_JLE:  "JLE",
	OP_JGE:  "JGE",
	OP_LDI:  "LDI",
	OP_LD:   "LD",
	OP_ST:   "ST",
}

// opcodeName maps every valid opcode to its mnemonic.
var opcodeName = func() map[Opcode]string {
	names := make(map[Opcode]string, len(generalName)+alu_op_count)
	for op, name := range generalName {
		names[op] = name
	}
	for op := range AluOp(alu_op_count) {
		names[op.Opcode()] = op.String()
	}
	return names
}()

// opcodeMnemonic is the reverse of opcodeName.
var opcodeMnemonic = func() map[string]Opcode {
	ops := make(map[string]Opcode, len(opcodeName))
	for op, name := range opcodeName {
		ops[name] = op
	}
	return ops
}()

// LookupOpcode finds the opcode for an upper case mnemonic.
func LookupOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = opcodeMnemonic[mnemonic]
	return
}

// Valid returns true if the opcode is in the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeName[op]
	return ok
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	name, ok := opcodeName[op]
	if !ok {
		return fmt.Sprintf("Opcode(0x%02x)", uint8(op))
	}
	return name
}

// Decoded is the bit field decode of an opcode.
type Decoded struct {
	Opcode Opcode
	Argc   int   // Operand bytes following the opcode.
	IsAlu  bool  // Dispatched to the ALU by Id.
	SetsPc bool  // The handler updates the PC; no auto-advance.
	Id     uint8 // Operation identifier within its class.
}

// Decode splits the opcode into its bit fields.
// Decode is defined for every byte value; validity is a separate question.
func (op Opcode) Decode() Decoded {
	return Decoded{
		Opcode: op,
		Argc:   int(op >> OPCODE_ARGC_SHIFT),
		IsAlu:  (op & OPCODE_ALU) != 0,
		SetsPc: (op & OPCODE_SETS_PC) != 0,
		Id:     uint8(op & OPCODE_ID_MASK),
	}
}

// Instruction is a decoded opcode with its operand bytes.
type Instruction struct {
	Decoded
	Pc   int     // Address of the opcode.
	Args [2]byte // Operand bytes; only the first Argc are fetched.
}

// String returns the assembly language form of the instruction.
func (instr Instruction) String() (out string) {
	out = instr.Opcode.String()

	var kinds []operandKind
	if instr.Opcode.Valid() {
		kinds = operandKinds(instr.Opcode)
	}

	for n := range min(instr.Argc, len(instr.Args)) {
		sep := ","
		if n == 0 {
			sep = " "
		}
		arg := instr.Args[n]
		if n < len(kinds) && kinds[n] == operandRegister {
			out += fmt.Sprintf("%vR%d", sep, arg)
		} else {
			out += fmt.Sprintf("%v%d", sep, arg)
		}
	}

	return
}

// operandKind is the interpretation of an operand byte.
type operandKind int

const (
	operandRegister  = operandKind(0)
	operandImmediate = operandKind(1)
)

// operandKinds returns how each operand byte of a valid opcode is used.
func operandKinds(op Opcode) (kinds []operandKind) {
	argc := op.Decode().Argc
	for range argc {
		kinds = append(kinds, operandRegister)
	}
	if op == OP_LDI {
		kinds[1] = operandImmediate
	}
	return
}
