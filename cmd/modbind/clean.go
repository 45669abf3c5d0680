package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbind/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dirs...]",
	Short: "Drop the disk cache and optionally the generated files",
	Long: `Clean removes the user-level cache used by "gen --disk-cache". With
--outputs it also deletes generated registration and guard files from the
package directories (hand-written files with the same name are kept).`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("outputs", false, "also remove generated files from package directories")
}

func runClean(cmd *cobra.Command, args []string) error {
	outputs, err := cmd.Flags().GetBool("outputs")
	if err != nil {
		return err
	}

	cache, err := driver.OpenDiskCache("modbind")
	if err != nil {
		return fmt.Errorf("open disk cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("drop disk cache: %w", err)
	}
	logger.Info("dropped disk cache", "dir", cache.Dir())

	if !outputs {
		return nil
	}
	t, err := resolveTargets(args)
	if err != nil {
		return err
	}
	for _, dir := range t.dirs {
		removed, err := driver.RemoveOutputs(dir, t.cfg.Generate.Output)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logger.Info("removed generated files", "pkg", t.display(dir), "files", len(removed))
		}
	}
	return nil
}
