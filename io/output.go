// Package io provides the output devices of the LS-8 emulator.
// PRN and PRA are fire-and-forget: an Output never reports an error back to
// the CPU, and devices keep any failure for the caller to inspect.
package io

// Output receives values printed by the CPU.
type Output interface {
	// Number receives a register value printed in decimal (PRN).
	Number(value byte)
	// Char receives a register value printed as a character (PRA).
	Char(value byte)
}
