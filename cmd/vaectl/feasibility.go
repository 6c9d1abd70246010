package main

import (
	"fmt"
	"os"

	"github.com/diewo77/vae-dossiers/internal/services"
	"github.com/spf13/cobra"
)

func newFeasibilityCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feasibility",
		Short: "Feasibility file tools",
	}

	var out string
	pdfCmd := &cobra.Command{
		Use:   "pdf <candidacy-id>",
		Short: "Generate the dematerialized feasibility file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := services.NewFeasibilityService(e.db, e.log).GenerateFeasibilityFile(ctx(cmd), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("dossier-de-faisabilite-%s.pdf", args[0])
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			success(cmd, fmt.Sprintf("Wrote %s (%d bytes)", out, len(data)))
			return nil
		},
	}
	pdfCmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.AddCommand(pdfCmd)
	return cmd
}
