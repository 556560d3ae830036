// Package cpu implements the LS-8 microprocessor and its assembler.
//
// The CPU has 256 bytes of memory, eight 8-bit general-purpose registers
// (r0-r7, r7 doubling as the stack pointer), a program counter, and a flags
// register that is set by CMP and read by the conditional jumps.
//
// Each instruction is an opcode byte followed by zero, one or two operand
// bytes. The opcode is laid out as AABCDDDD: AA is the operand count, B routes
// the instruction to the ALU, C marks instructions that set the program
// counter themselves, and DDDD identifies the operation within its class.
//
// The assembler accepts the classic one-byte-per-line binary image format as
// well as mnemonic source with labels, equates, and $(...) expressions.
package cpu
