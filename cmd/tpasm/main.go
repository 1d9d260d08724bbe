// Command tpasm builds, formats, and compares timed-processor programs,
// the same three operations qsystem2_asm.py's ASM_Program exposes
// (compile/asm/compare_program), as cobra subcommands.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbrzusto/tprocgo/pulse"
	"github.com/jbrzusto/tprocgo/tproc"
	"github.com/jbrzusto/tprocgo/units"
)

// demoProgram builds a small const-pulse-then-loop demonstration program:
// a useful smoke target for build/format/compare since it exercises the
// sequencer, the envelope registry, and a counting loop in one shot.
func demoProgram() (*tproc.Program, error) {
	seq := pulse.NewSequencer(tproc.NewProgram(), units.DefaultClocks())
	prog := seq.Program

	freq := 100.0
	gain := 30000
	length := 100

	if err := seq.Channels[1].RegisterPulse("probe", pulse.StyleConst, nil, nil, length); err != nil {
		return nil, err
	}

	prog.Regwi(0, 14, 10, "reps counter")
	prog.Label("LOOP")
	if err := seq.ConstPulse(1, "probe", pulse.Params{Freq: &freq, Gain: &gain}, nil, true); err != nil {
		return nil, err
	}
	seq.SyncAll(10)
	prog.Loopnz(0, 14, "LOOP", "")
	prog.End("")

	return prog, prog.Err()
}

func main() {
	root := &cobra.Command{
		Use:   "tpasm",
		Short: "Build, format, and compare timed-processor programs",
	}

	var outPath string
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the demo program and write it as a flat little-endian binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := demoProgram()
			if err != nil {
				return err
			}
			words, err := prog.Compile()
			if err != nil {
				return err
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			for _, w := range words {
				if err := binary.Write(f, binary.LittleEndian, w); err != nil {
					return err
				}
			}
			fmt.Printf("wrote %d words to %s\n", len(words), outPath)
			return nil
		},
	}
	buildCmd.Flags().StringVarP(&outPath, "output", "o", "tpasm.bin", "Output binary path")

	formatCmd := &cobra.Command{
		Use:   "format",
		Short: "Print the demo program as human-readable assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := demoProgram()
			if err != nil {
				return err
			}
			fmt.Println(prog.FormatASM())
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [reference.bin]",
		Short: "Compare the demo program's compiled words against a reference binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := demoProgram()
			if err != nil {
				return err
			}
			idx, err := prog.CompareWith(args[0])
			if err != nil {
				return err
			}
			if idx < 0 {
				fmt.Println("identical")
				return nil
			}
			fmt.Printf("first mismatch at word %d\n", idx)
			return fmt.Errorf("programs differ")
		},
	}

	var binary_ bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the demo program as hex or binary, one word per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := demoProgram()
			if err != nil {
				return err
			}
			var out string
			if binary_ {
				out, err = prog.BinDump()
			} else {
				out, err = prog.HexDump()
			}
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	dumpCmd.Flags().BoolVarP(&binary_, "binary", "b", false, "dump as binary instead of hex")

	root.AddCommand(buildCmd, formatCmd, compareCmd, dumpCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
