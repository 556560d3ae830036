package cpu

import (
	"fmt"
	"strings"
)

// Trace is a read-only snapshot of the CPU, taken before an instruction runs.
type Trace struct {
	Pc       int
	Bytes    [3]byte // Memory at Pc, Pc+1 and Pc+2; zero past the end of memory.
	Register Registers
	Flags    Flags
}

// TraceFunc receives a Trace before every instruction cycle.
// No trace follows the final HLT or fault; use Cpu.Snapshot for the state
// the CPU stopped in.
type TraceFunc func(Trace)

// Snapshot captures the state the next instruction will run against.
func (cpu *Cpu) Snapshot() (tr Trace) {
	tr.Pc = cpu.Pc
	for n := range tr.Bytes {
		tr.Bytes[n], _ = cpu.Memory.Read(cpu.Pc + n)
	}
	tr.Register = cpu.Register
	tr.Flags = cpu.Flags
	return
}

// String renders the trace as 'TRACE: PC | B0 B1 B2 | R0 .. R7'.
func (tr Trace) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X | %02X %02X %02X |", tr.Pc, tr.Bytes[0], tr.Bytes[1], tr.Bytes[2])
	for _, reg := range tr.Register {
		fmt.Fprintf(&sb, " %02X", reg)
	}

	return sb.String()
}
