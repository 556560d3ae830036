package cpu

// The stack lives in memory and grows down from SP_INIT. r7 always holds
// the stack pointer, whichever register supplies the data.
//
// Nothing guards the stack against running into the program. Pushing past
// address 0 wraps the 8-bit stack pointer to the top of memory.

// Push decrements SP and stores value at the new top of stack.
func (cpu *Cpu) Push(value byte) (err error) {
	sp := cpu.Register[REG_SP] - 1
	err = cpu.Memory.Write(int(sp), int(value))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// Pop reads the top of stack and increments SP.
func (cpu *Cpu) Pop() (value byte, err error) {
	sp := cpu.Register[REG_SP]
	value, err = cpu.Memory.Read(int(sp))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp + 1
	return
}

// Peek returns the top of stack without moving SP.
func (cpu *Cpu) Peek() (value byte) {
	return cpu.Memory[cpu.Register[REG_SP]]
}

// Depth returns the number of bytes pushed below SP_INIT.
// Depth is meaningless once the stack has wrapped.
func (cpu *Cpu) Depth() int {
	return SP_INIT - int(cpu.Register[REG_SP])
}
