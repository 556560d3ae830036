// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/translate"
)

// openInput opens path for reading; "-" is stdin.
func openInput(path string) (rd io.ReadCloser, err error) {
	if path == "-" {
		rd = io.NopCloser(os.Stdin)
		return
	}

	return os.Open(path)
}

// loadProgram assembles path, or wraps its raw bytes if raw is set.
func loadProgram(emu *emulator.Emulator, path string, raw bool) (prog *cpu.Program, err error) {
	inf, err := openInput(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if raw {
		var data []byte
		data, err = io.ReadAll(inf)
		if err != nil {
			return
		}
		prog = &cpu.Program{
			Lines: []cpu.Line{{LineNo: 1, Address: emulator.PROGRAM_BASE, Bytes: data}},
		}
		return
	}

	prog, err = emu.Assembler().Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ls8",
		Short: "LS-8 assembler and emulator",
		Long: `Assembles and runs programs for the LS-8, an 8-bit machine with
256 bytes of memory and eight registers.

Sources are either the one-byte-per-line binary format or assembly
mnemonics; both may be mixed in a single file.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		verbose  bool
		raw      bool
		trace    bool
		timeout  time.Duration
		maxTicks int
		output   string
	)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().BoolVar(&raw, "raw", false, "Input is a raw memory image")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.Printf("ls8: messages in %v", translate.Language())
		}
	}

	var runCmd = &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose
			emu.MaxTicks = maxTicks

			emu.Program, err = loadProgram(emu, args[0], raw)
			if err != nil {
				return
			}

			err = emu.Reset()
			if err != nil {
				return
			}

			emu.Console.Output = cmd.OutOrStdout()
			if trace {
				emu.Trace = func(tr cpu.Trace) {
					fmt.Fprintln(cmd.ErrOrStderr(), tr)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			err = emu.Run(ctx)
			if err != nil && verbose {
				fmt.Fprint(cmd.ErrOrStderr(), emu.Cpu.String())
			}

			return
		},
	}

	runCmd.Flags().BoolVar(&trace, "trace", false, "Trace each instruction to stderr")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop after this long (0 = no limit)")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Stop after this many instructions (0 = no limit)")

	var asmCmd = &cobra.Command{
		Use:   "asm FILE",
		Short: "Assemble a program into the binary image format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose

			prog, err := loadProgram(emu, args[0], raw)
			if err != nil {
				return
			}

			ouf := cmd.OutOrStdout()
			if output != "-" {
				var file *os.File
				file, err = os.Create(output)
				if err != nil {
					return
				}
				defer func() {
					cerr := file.Close()
					if err == nil {
						err = cerr
					}
				}()
				ouf = file
			}

			return prog.WriteImage(ouf)
		},
	}

	asmCmd.Flags().StringVarP(&output, "output", "o", "-", "Image output")

	var disasmCmd = &cobra.Command{
		Use:   "disasm FILE",
		Short: "List the instructions of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose

			prog, err := loadProgram(emu, args[0], raw)
			if err != nil {
				return
			}

			for instr := range cpu.Disassemble(prog.Binary()) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), instr.Listing())
				if err != nil {
					return
				}
			}

			return
		},
	}

	var definesCmd = &cobra.Command{
		Use:   "defines",
		Short: "List the predefined assembler equates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			for name, value := range emu.Defines() {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), ".equ %v %v\n", name, value)
				if err != nil {
					return
				}
			}

			return
		},
	}

	rootCmd.AddCommand(runCmd, asmCmd, disasmCmd, definesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
