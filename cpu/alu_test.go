package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// aluCpu returns a CPU with r0 = a and r1 = b.
func aluCpu(a, b byte) (cpu *Cpu) {
	cpu = NewCpu(nil)
	cpu.Register[0] = a
	cpu.Register[1] = b
	return
}

func TestAlu_Arithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op AluOp
		fn func(a, b int) int
	}){
		{ALU_ADD, func(a, b int) int { return a + b }},
		{ALU_SUB, func(a, b int) int { return a - b }},
		{ALU_MUL, func(a, b int) int { return a * b }},
	}

	for _, entry := range table {
		failed := 0
		for a := range 256 {
			for b := range 256 {
				cpu := aluCpu(byte(a), byte(b))
				err := cpu.doAlu(entry.op, 0, 1)
				expected := byte(entry.fn(a, b) & 0xff)
				if err != nil || cpu.Register[0] != expected || cpu.Register[1] != byte(b) {
					failed++
				}
			}
		}
		assert.Zero(failed, entry.op.String())
	}
}

func TestAlu_Compare(t *testing.T) {
	assert := assert.New(t)

	failed := 0
	for a := range 256 {
		for b := range 256 {
			cpu := aluCpu(byte(a), byte(b))
			err := cpu.doAlu(ALU_CMP, 0, 1)

			var expected Flags
			switch {
			case a == b:
				expected = FL_E
			case a > b:
				expected = FL_G
			default:
				expected = FL_L
			}

			if err != nil || cpu.Flags != expected ||
				cpu.Register[0] != byte(a) || cpu.Register[1] != byte(b) {
				failed++
			}
		}
	}
	assert.Zero(failed)
}

func TestAlu_Logic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op       AluOp
		a, b     byte
		expected byte
	}){
		{ALU_AND, 0xf0, 0x3c, 0x30},
		{ALU_OR, 0xf0, 0x0c, 0xfc},
		{ALU_XOR, 0xff, 0x0f, 0xf0},
		{ALU_NOT, 0x0f, 0x55, 0xf0},
		{ALU_NOT, 0x00, 0x00, 0xff},
		{ALU_SHL, 0x81, 1, 0x02},
		{ALU_SHL, 0x01, 7, 0x80},
		{ALU_SHL, 0x01, 8, 0x00},
		{ALU_SHL, 0xff, 200, 0x00},
		{ALU_SHR, 0x81, 1, 0x40},
		{ALU_SHR, 0x80, 7, 0x01},
		{ALU_SHR, 0x80, 8, 0x00},
		{ALU_INC, 0x41, 0, 0x42},
		{ALU_INC, 0xff, 0, 0x00},
		{ALU_DEC, 0x42, 0, 0x41},
		{ALU_DEC, 0x00, 0, 0xff},
		{ALU_DIV, 10, 3, 3},
		{ALU_DIV, 255, 1, 255},
		{ALU_MOD, 10, 3, 1},
		{ALU_MOD, 9, 3, 0},
	}

	for _, entry := range table {
		cpu := aluCpu(entry.a, entry.b)
		err := cpu.doAlu(entry.op, 0, 1)
		assert.NoError(err, entry.op.String())
		assert.Equal(entry.expected, cpu.Register[0], entry.op.String())
		assert.Equal(entry.b, cpu.Register[1], entry.op.String())
	}
}

func TestAlu_Unary(t *testing.T) {
	assert := assert.New(t)

	// Unary operations never read the second register.
	for _, op := range []AluOp{ALU_INC, ALU_DEC, ALU_NOT} {
		cpu := aluCpu(5, 0)
		err := cpu.doAlu(op, 0, 0xff)
		assert.NoError(err, op.String())
	}
}

func TestAlu_DivideByZero(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []AluOp{ALU_DIV, ALU_MOD} {
		cpu := aluCpu(10, 0)
		cpu.Flags = FL_G
		err := cpu.doAlu(op, 0, 1)
		assert.ErrorIs(err, ErrDivideByZero, op.String())
		assert.Equal(byte(10), cpu.Register[0], op.String())
		assert.Equal(byte(0), cpu.Register[1], op.String())
		assert.Equal(FL_G, cpu.Flags, op.String())
	}
}

func TestAlu_Errors(t *testing.T) {
	assert := assert.New(t)

	cpu := aluCpu(1, 2)

	err := cpu.doAlu(AluOp(alu_op_count), 0, 1)
	assert.ErrorIs(err, ErrUnsupported)

	err = cpu.doAlu(ALU_ADD, 8, 1)
	assert.ErrorIs(err, ErrOutOfRange)

	err = cpu.doAlu(ALU_ADD, 0, 8)
	assert.ErrorIs(err, ErrOutOfRange)
	assert.Equal(byte(1), cpu.Register[0])
}
