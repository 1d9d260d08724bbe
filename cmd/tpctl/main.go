// Command tpctl peeks, pokes, starts, and stops the timed-processor
// FPGA core, the same direct register access the teacher's cmd/pk2 and
// cmd/showreg tools provided, restructured as cobra subcommands.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbrzusto/tprocgo/fpga"
	"github.com/jbrzusto/tprocgo/units"
)

func openDevice() (*fpga.FPGA, error) {
	c := units.DefaultClocks()
	return fpga.New(c.FsProc, c.FsDAC, c.FsADC)
}

func main() {
	root := &cobra.Command{
		Use:   "tpctl",
		Short: "Peek/poke/start/stop the timed-processor FPGA core",
	}

	peekCmd := &cobra.Command{
		Use:   "peek [addr]",
		Short: "Read one register-file slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}
			dev, err := openDevice()
			if err != nil {
				return err
			}
			defer dev.Close()
			v, err := dev.Peek(uint32(addr))
			if err != nil {
				return err
			}
			fmt.Printf("%d\n", v)
			return nil
		},
	}

	pokeCmd := &cobra.Command{
		Use:   "poke [addr] [value]",
		Short: "Write one register-file slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}
			value, err := strconv.ParseUint(args[1], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			dev, err := openDevice()
			if err != nil {
				return err
			}
			defer dev.Close()
			return dev.Poke(uint32(addr), uint32(value))
		},
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Begin TP execution",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			defer dev.Close()
			return dev.Start()
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Halt TP execution immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			defer dev.Close()
			return dev.Stop()
		},
	}

	root.AddCommand(peekCmd, pokeCmd, startCmd, stopCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
