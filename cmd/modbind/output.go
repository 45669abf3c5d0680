package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modbind/internal/diag"
	"modbind/internal/diagfmt"
	"modbind/internal/driver"
)

// printDiagnostics writes the diagnostics of every package in the format
// selected by --format. JSON output is one document for the whole run.
func printDiagnostics(cmd *cobra.Command, results []driver.PackageResult) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	pathModeFlag, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathModeFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "pretty":
		useColor, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		ctxLines, err := cmd.Flags().GetInt8("context")
		if err != nil {
			return err
		}
		opts := diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     ctxLines,
			PathMode:    pathMode,
			ShowNotes:   true,
			ShowFixes:   true,
			ShowPreview: true,
		}
		for i := range results {
			res := &results[i]
			if res.Bag == nil || res.Bag.Len() == 0 {
				continue
			}
			res.Bag.Sort()
			diagfmt.Pretty(out, res.Bag, res.FileSet, opts)
			fmt.Fprintln(out)
		}
	case "short":
		for i := range results {
			res := &results[i]
			if res.Bag == nil || res.Bag.Len() == 0 {
				continue
			}
			res.Bag.Sort()
			if _, err := io.WriteString(out, diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true)+"\n"); err != nil {
				return err
			}
		}
	case "json":
		opts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
			IncludePreviews:  true,
		}
		var all diagfmt.DiagnosticsOutput
		all.Diagnostics = []diagfmt.DiagnosticJSON{}
		for i := range results {
			res := &results[i]
			if res.Bag == nil || res.Bag.Len() == 0 {
				continue
			}
			res.Bag.Sort()
			part := diagfmt.BuildDiagnosticsOutput(res.Bag.Items(), res.FileSet, opts)
			all.Diagnostics = append(all.Diagnostics, part.Diagnostics...)
		}
		all.Count = len(all.Diagnostics)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (expected pretty|json|short)", format)
	}
	return nil
}
