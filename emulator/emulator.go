// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

const (
	PROGRAM_BASE = 0 // Load address of the program image.
)

var _emulator_defines = map[string]string{
	"PROGRAM_BASE": fmt.Sprintf("%v", PROGRAM_BASE),
	"STACK_TOP":    fmt.Sprintf("0x%02x", cpu.SP_INIT-1),
}

// Emulator state. CPU + program listing + console.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console io.Console // Console for PRN and PRA.

	MaxTicks int // If positive, Run stops with ErrTickLimit after this many ticks.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}

	emu.Cpu = cpu.NewCpu(&emu.Console)

	return
}

// Defines returns an iterator over all of the defines, ordered by name.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.SortedSeq2(internal.ConcatSeq2(
		maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	))
}

// Assembler returns an assembler with the emulator defines predefined.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range maps.All(_emulator_defines) {
		asm.Predefine(name, value)
	}

	return
}

// Reset the CPU and load the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = false

	err = emu.Cpu.Load(emu.Program.Binary())
	if err != nil {
		return
	}

	emu.Console.Err = nil
	emu.Cpu.Verbose = emu.Verbose

	if emu.Verbose {
		log.Printf("emulator: reset, %d bytes", len(emu.Program.Binary()))
	}

	return
}

// LineNo returns the current line number for the executing opcode.
// Zero is returned if no source line assembled the byte at the PC.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
// A console write failure stops the emulator like a CPU fault.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Console.Err != nil {
		err = emu.Console.Err
		return
	}

	done, err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Console.Err != nil {
		err = emu.Console.Err
		done = false
	}

	return
}

// Run ticks the emulator until the program halts, faults, exceeds MaxTicks,
// or ctx is done. A cancelled ctx returns its error unwrapped.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrTickLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
