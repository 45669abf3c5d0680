package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbind/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain [code]",
	Short: "Describe a diagnostic code",
	Example: `  modbind explain BND1006
  modbind explain --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().Bool("list", false, "list every diagnostic code")
}

func runExplain(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if list || len(args) == 0 {
		for _, c := range diag.Codes() {
			fmt.Fprintf(out, "%-8s %s\n", c.ID(), c.Title())
		}
		return nil
	}
	code, err := diag.ParseCode(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n\n%s\n", code.ID(), code.Title(), code.Explain())
	return nil
}
