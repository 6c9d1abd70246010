package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/diewo77/vae-dossiers/internal/services"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newCandidacyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidacy",
		Short: "Inspect and update candidacies",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <candidacy-id>",
			Short: "Print a candidacy and its status history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := services.NewCandidacyService(e.db, e.log).Get(ctx(cmd), args[0])
				if err != nil {
					return err
				}
				ready, err := services.NewFeasibilityService(e.db, e.log).IsReady(ctx(cmd), c.ID)
				if err != nil {
					return err
				}
				var history []models.CandidacyStatusEntry
				if err := e.db.WithContext(ctx(cmd)).Where("candidacy_id = ?", c.ID).Order("id").Find(&history).Error; err != nil {
					return err
				}
				renderCandidacy(cmd.OutOrStdout(), c, ready)
				renderHistory(cmd.OutOrStdout(), history)
				return nil
			},
		},
		&cobra.Command{
			Use:   "switch-autonome <candidacy-id>",
			Short: "Switch an off-platform candidacy to autonomous mode",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := services.NewCandidacyService(e.db, e.log).SwitchToAutonome(ctx(cmd), args[0])
				if err != nil {
					return err
				}
				success(cmd, fmt.Sprintf("Candidacy %s is now %s (status %s)", c.ID, c.TypeAccompagnement, c.Status))
				return nil
			},
		},
	)
	return cmd
}

func renderCandidacy(w io.Writer, c *models.Candidacy, ready bool) {
	color.New(color.FgYellow).Fprintf(w, "Candidacy %s\n", c.ID)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	certification := "-"
	if c.Certification != nil {
		certification = fmt.Sprintf("RNCP %s %s", c.Certification.RncpID, c.Certification.Label)
	}
	organism := "-"
	if c.Organism != nil {
		organism = c.Organism.Label
	}
	table.AppendBulk([][]string{
		{"Status", string(c.Status)},
		{"Type accompagnement", string(c.TypeAccompagnement)},
		{"Finance module", string(c.FinanceModule)},
		{"Feasibility format", string(c.FeasibilityFormat)},
		{"Certification", certification},
		{"Organism", organism},
		{"Feasibility file ready", yesNo(ready)},
	})
	table.Render()
}

func renderHistory(w io.Writer, history []models.CandidacyStatusEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Status", "Active"})
	for _, h := range history {
		table.Append([]string{h.CreatedAt.Format("2006-01-02 15:04"), string(h.Status), yesNo(h.IsActive)})
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func success(cmd *cobra.Command, msg string) {
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), strings.TrimSpace(msg))
}
