package emulator

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(cpu.Output(&emu.Console), emu.Cpu.Output)
}

func doLoad(emu *Emulator, program []string, t *testing.T) (output *bytes.Buffer) {
	assert := assert.New(t)

	prog, err := emu.Assembler().Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		t.FailNow()
	}
	emu.Program = prog

	err = emu.Reset()
	assert.NoError(err)

	output = &bytes.Buffer{}
	emu.Console.Output = output

	return
}

// doRunSingle runs a program without branches, checking that each line
// executes in order.
func doRunSingle(emu *Emulator, program []string, t *testing.T) (output []byte) {
	assert := assert.New(t)

	buff := doLoad(emu, program, t)

	lines := emu.Program.Lines
	for n, line := range lines {
		here := program[line.LineNo-1]
		assert.Equal(line.LineNo, emu.LineNo(), here)
		assert.Equal(line.Address, emu.Cpu.Pc, here)
		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
		assert.Equal(n == len(lines)-1, done, here)
	}

	output = buff.Bytes()
	return
}

func doRunBranch(emu *Emulator, program []string, t *testing.T) (output []byte) {
	assert := assert.New(t)

	buff := doLoad(emu, program, t)

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.True(emu.Halted())

	output = buff.Bytes()
	return
}

func TestEmulatorMult(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI R0, 8",
		"LDI R1, 9",
		"MUL R0, R1",
		"PRN R0",
		"HLT",
	}

	output := doRunSingle(emu, program, t)

	assert.Equal("72\n", string(output))
	assert.Equal(5, emu.Ticks)
}

func TestEmulatorAlu(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI R0, 0x10",
		"LDI R1, 3",
		"ADD R0, R1", // 0x13
		"SHL R0, R1", // 0x98
		"LDI R2, 0x0f",
		"AND R2, R0", // 0x08
		"NOT R2",     // 0xf7
		"LDI R3, 0x40",
		"DEC R3", // 0x3f
		"LDI R4, 100",
		"DIV R4, R1", // 33
		"LDI R5, 100",
		"MOD R5, R1", // 1
		"LDI R6, 0x0f",
		"XOR R6, R3", // 0x30
		"OR R6, R1",  // 0x33
		"PRN R0",
		"HLT",
	}

	output := doRunSingle(emu, program, t)

	assert.Equal("152\n", string(output))
	assert.Equal(byte(0x98), emu.Cpu.Register[0])
	assert.Equal(byte(0x03), emu.Cpu.Register[1])
	assert.Equal(byte(0xf7), emu.Cpu.Register[2])
	assert.Equal(byte(0x3f), emu.Cpu.Register[3])
	assert.Equal(byte(33), emu.Cpu.Register[4])
	assert.Equal(byte(1), emu.Cpu.Register[5])
	assert.Equal(byte(0x33), emu.Cpu.Register[6])
}

func TestEmulatorEqu(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		".equ CONST_10 0x10",
		"LDI R0, CONST_10",
		"LDI R1, $(CONST_10 + CONST_10)",
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"LDI R2, CONST_30",
		"LDI R3, STACK_TOP",
		"HLT",
	}

	doRunSingle(emu, program, t)

	assert.Equal(byte(0x10), emu.Cpu.Register[0])
	assert.Equal(byte(0x20), emu.Cpu.Register[1])
	assert.Equal(byte(0x30), emu.Cpu.Register[2])
	assert.Equal(byte(cpu.SP_INIT-1), emu.Cpu.Register[3])
}

func TestEmulatorCall(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"    LDI R0, 5",
		"    LDI R1, Double",
		"    CALL R1",
		"    CALL R1",
		"    PRN R0",
		"    HLT",
		"Double:",
		"    ADD R0, R0",
		"    RET",
	}

	output := doRunBranch(emu, program, t)

	assert.Equal("20\n", string(output))
	assert.Equal(0, emu.Cpu.Depth())
}

func TestEmulatorString(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"        LDI R1, Message",
		"        LDI R2, 0",
		"        LDI R3, Loop",
		"        LDI R4, Done",
		"Loop:   LD R0, R1",
		"        CMP R0, R2",
		"        JEQ R4",
		"        PRA R0",
		"        INC R1",
		"        JMP R3",
		"Done:   HLT",
		"Message: DB 'H', 'i', '!', '\\n', 0",
	}

	output := doRunBranch(emu, program, t)

	assert.Equal("Hi!\n", string(output))
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI R0, 1",
		"LDI R1, 0",
		"; divide",
		"DIV R0, R1",
		"HLT",
	}

	buff := doLoad(emu, program, t)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(4, runtime.LineNo)
	}

	var fault *cpu.ErrFault
	if assert.True(errors.As(err, &fault)) {
		assert.Equal(6, fault.Pc)
		assert.Equal(cpu.OP_DIV, fault.Opcode)
	}

	assert.Empty(buff.Bytes())
}

func TestEmulatorTickLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.MaxTicks = 100
	program := []string{
		"Spin: LDI R0, Spin",
		"      JMP R0",
	}

	doLoad(emu, program, t)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(100, emu.Ticks)
	assert.NoError(emu.Fault())
}

func TestEmulatorCancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{"Spin: LDI R0, Spin", "JMP R0"}, t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx)
	assert.Equal(context.Canceled, err)
	assert.Equal(0, emu.Ticks)
}

type failWriter struct{}

var errFailWriter = errors.New("fail")

func (failWriter) Write(p []byte) (int, error) {
	return 0, errFailWriter
}

func TestEmulatorConsoleError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{"LDI R0, 1", "PRN R0", "PRN R0", "HLT"}, t)
	emu.Console.Output = failWriter{}

	err := emu.Run(context.Background())
	assert.ErrorIs(err, errFailWriter)
	assert.Equal(2, emu.Ticks)
	assert.False(emu.Halted())

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(2, runtime.LineNo)
	}

	// Reset clears the console error.
	emu.Console.Output = &bytes.Buffer{}
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(context.Background()))
}

func TestEmulatorTrace(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{"LDI R0, 8", "PRN R0", "HLT"}, t)

	var lines []string
	emu.Trace = func(tr cpu.Trace) {
		lines = append(lines, tr.String())
	}

	assert.NoError(emu.Run(context.Background()))
	assert.Equal([]string{
		"TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 F4",
		"TRACE: 03 | 47 00 01 | 08 00 00 00 00 00 00 F4",
		"TRACE: 05 | 01 00 00 | 08 00 00 00 00 00 00 F4",
	}, lines)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	var names []string
	defines := map[string]string{}
	for name, value := range emu.Defines() {
		names = append(names, name)
		defines[name] = value
	}

	assert.True(slices.IsSorted(names))
	assert.Equal("0", defines["PROGRAM_BASE"])
	assert.Equal("0xf3", defines["STACK_TOP"])
	assert.Equal("0xf4", defines["SP_INIT"])
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.Equal(0, emu.LineNo())

	doLoad(emu, []string{"; nothing", "", "HLT"}, t)
	assert.Equal(3, emu.LineNo())

	emu.Cpu.Pc = 0x80
	assert.Equal(0, emu.LineNo())
}
