package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/io"
)

// Output receives the values printed by PRN and PRA.
type Output io.Output

var _cpu_defines = map[string]string{
	"REG_SP":      fmt.Sprintf("%d", REG_SP),
	"SP_INIT":     fmt.Sprintf("0x%02x", SP_INIT),
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"FL_E":        fmt.Sprintf("%d", FL_E),
	"FL_G":        fmt.Sprintf("%d", FL_G),
	"FL_L":        fmt.Sprintf("%d", FL_L),
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory    // Main memory.
	Register Registers // Register bank; r7 is the stack pointer.
	Pc       int       // Address of the next instruction.
	Flags    Flags     // Condition flags from the last CMP.

	Output Output    // Sink for PRN and PRA; nil discards.
	Trace  TraceFunc // Called before each instruction, if set.

	Ticks int // Instructions executed since reset.

	halted bool
	fault  *ErrFault
}

// NewCpu creates a reset CPU printing to output.
func NewCpu(output Output) (cpu *Cpu) {
	cpu = &Cpu{
		Output: output,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, registers, and flags.
// - Points the stack pointer at SP_INIT.
// - Sets the PC to 0, and leaves the halted and faulted states.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = SP_INIT
	cpu.Pc = 0
	cpu.Flags = 0
	cpu.Ticks = 0
	cpu.halted = false
	cpu.fault = nil
}

// Load resets the CPU and places image in memory at address 0.
// Nothing is loaded if the image is larger than memory.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > len(cpu.Memory) {
		err = errors.Join(ErrLoad, ErrOutOfRange)
		return
	}

	cpu.Reset()
	err = cpu.Memory.Load(image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// Halted returns true once HLT has executed.
func (cpu *Cpu) Halted() bool {
	return cpu.halted
}

// Fault returns the fatal error that stopped the CPU, if any.
func (cpu *Cpu) Fault() error {
	if cpu.fault == nil {
		return nil
	}
	return cpu.fault
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc",
		"fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "sp",
		"stack",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "fl":
			strval = cpu.Flags.String()
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6":
			strval = fmt.Sprintf("%02X", cpu.Register[reg[1]-'0'])
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Register[REG_SP])
		case "stack":
			if cpu.Depth() > 0 {
				strval = fmt.Sprintf("%02X", cpu.Peek())
			} else {
				strval = "--"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Fetch reads and decodes the instruction at the PC.
func (cpu *Cpu) Fetch() (instr Instruction, err error) {
	instr.Pc = cpu.Pc

	opcode, err := cpu.Memory.Read(instr.Pc)
	if err != nil {
		err = errors.Join(ErrOpcodeFetch, err)
		return
	}

	instr.Decoded = Opcode(opcode).Decode()
	if !instr.Opcode.Valid() {
		err = ErrUnsupported
		return
	}

	for n := range instr.Argc {
		instr.Args[n], err = cpu.Memory.Read(instr.Pc + 1 + n)
		if err != nil {
			err = errors.Join(ErrOpcodeOperand, err)
			return
		}
	}

	return
}

// Tick executes a single instruction cycle.
// halted reports that HLT has executed; a fatal error is returned as an
// *ErrFault, and every later Tick returns the same fault.
func (cpu *Cpu) Tick() (halted bool, err error) {
	if cpu.fault != nil {
		err = cpu.fault
		return
	}

	if cpu.halted {
		halted = true
		return
	}

	if cpu.Trace != nil {
		cpu.Trace(cpu.Snapshot())
	}

	instr, err := cpu.Fetch()
	if err == nil {
		err = cpu.Execute(instr)
	}
	if err != nil {
		cpu.fault = &ErrFault{Pc: instr.Pc, Opcode: instr.Opcode, Err: err}
		err = cpu.fault
		if cpu.Verbose {
			log.Printf("cpu: %v", err)
		}
		return
	}

	cpu.Ticks++
	halted = cpu.halted

	return
}

// Run executes instructions until HLT or a fault.
// ctx is checked before each fetch; its error is returned unwrapped on
// cancellation, and the CPU may be resumed afterwards.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var halted bool
		halted, err = cpu.Tick()
		if err != nil || halted {
			return
		}
	}
}

// Execute executes a single decoded instruction.
// The PC advances past the instruction unless the opcode sets the PC itself,
// in which case the handler chooses the next PC. The PC is unchanged on error.
func (cpu *Cpu) Execute(instr Instruction) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: %02x: %v", instr.Pc, instr)
	}

	var next_pc int
	if !instr.SetsPc {
		next_pc = instr.Pc + 1 + instr.Argc
	}

	reg_a := int(instr.Args[0])
	reg_b := int(instr.Args[1])

	if instr.IsAlu {
		err = cpu.doAlu(AluOp(instr.Id), reg_a, reg_b)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
			return
		}
		cpu.Pc = next_pc
		return
	}

	switch instr.Opcode {
	case OP_NOP:
		// pass
	case OP_HLT:
		cpu.halted = true
		return
	case OP_LDI:
		err = cpu.Register.Write(reg_a, int(instr.Args[1]))
	case OP_LD:
		var addr, value byte
		addr, err = cpu.Register.Read(reg_b)
		if err != nil {
			return
		}
		value, err = cpu.Memory.Read(int(addr))
		if err != nil {
			return
		}
		err = cpu.Register.Write(reg_a, int(value))
	case OP_ST:
		var addr, value byte
		addr, err = cpu.Register.Read(reg_a)
		if err != nil {
			return
		}
		value, err = cpu.Register.Read(reg_b)
		if err != nil {
			return
		}
		err = cpu.Memory.Write(int(addr), int(value))
	case OP_PRN, OP_PRA:
		var value byte
		value, err = cpu.Register.Read(reg_a)
		if err != nil {
			return
		}
		cpu.print(instr.Opcode, value)
	case OP_PUSH:
		var value byte
		value, err = cpu.Register.Read(reg_a)
		if err != nil {
			return
		}
		err = cpu.Push(value)
		if err != nil {
			err = errors.Join(ErrOpcodeStack, err)
		}
	case OP_POP:
		if reg_a >= len(cpu.Register) {
			err = ErrOutOfRange
			return
		}
		var value byte
		value, err = cpu.Pop()
		if err != nil {
			err = errors.Join(ErrOpcodeStack, err)
			return
		}
		err = cpu.Register.Write(reg_a, int(value))
	case OP_CALL:
		var target byte
		target, err = cpu.Register.Read(reg_a)
		if err != nil {
			return
		}
		err = cpu.Push(byte(instr.Pc + 2))
		if err != nil {
			err = errors.Join(ErrOpcodeStack, err)
			return
		}
		next_pc = int(target)
	case OP_RET:
		var target byte
		target, err = cpu.Pop()
		if err != nil {
			err = errors.Join(ErrOpcodeStack, err)
			return
		}
		next_pc = int(target)
	case OP_JMP, OP_JEQ, OP_JNE, OP_JGT, OP_JLT, OP_JLE, OP_JGE:
		var target byte
		target, err = cpu.Register.Read(reg_a)
		if err != nil {
			return
		}
		if cpu.jumpTaken(instr.Opcode) {
			next_pc = int(target)
		} else {
			next_pc = instr.Pc + 2
		}
	default:
		err = ErrUnsupported
	}

	if err != nil {
		return
	}

	cpu.Pc = next_pc

	return
}

// jumpTaken returns true if the jump opcode branches under the current flags.
func (cpu *Cpu) jumpTaken(op Opcode) bool {
	fl := cpu.Flags
	switch op {
	case OP_JMP:
		return true
	case OP_JEQ:
		return fl&FL_E != 0
	case OP_JNE:
		return fl&FL_E == 0
	case OP_JGT:
		return fl&FL_G != 0
	case OP_JLT:
		return fl&FL_L != 0
	case OP_JLE:
		return fl&(FL_L|FL_E) != 0
	case OP_JGE:
		return fl&(FL_G|FL_E) != 0
	}
	return false
}

// print sends a PRN or PRA value to the output.
func (cpu *Cpu) print(op Opcode, value byte) {
	if cpu.Output == nil {
		return
	}

	switch op {
	case OP_PRN:
		cpu.Output.Number(value)
	case OP_PRA:
		cpu.Output.Char(value)
	}
}
