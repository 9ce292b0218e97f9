package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootlinehq/rootline/internal/gedcom"
	"github.com/rootlinehq/rootline/internal/models"
)

// parseReport is the offline parse command's output shape.
type parseReport struct {
	Success     bool                `json:"success"`
	Version     string              `json:"version,omitempty"`
	Statistics  models.Statistics   `json:"statistics"`
	Individuals []models.Individual `json:"individuals,omitempty"`
	Issues      []models.ParseIssue `json:"issues,omitempty"`
}

func newParseCmd() *cobra.Command {
	var (
		check     bool
		statsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file.ged>",
		Short: "Parse a GEDCOM file locally without a server",
		Long: `Parse a GEDCOM 5.5/5.5.1 file and report individuals, families,
normalized dates and diagnostics. Runs entirely offline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}

			result := gedcom.Parse(string(raw))

			report := parseReport{
				Success: result.Success,
				Version: result.Version,
				Issues:  result.Errors,
			}

			if result.Success {
				report.Statistics = gedcom.ExtractStatistics(&result)
				if !statsOnly {
					report.Individuals = result.Individuals
				}

				if check {
					report.Issues = append(report.Issues, gedcom.ValidateRelationshipConsistency(&result)...)
					orphans := gedcom.ValidateOrphanedReferences(&result)
					report.Issues = append(report.Issues, orphans.Warnings...)
				}
			}

			if flagFmt == "table" && !statsOnly {
				printIndividualTable(report.Individuals)
			} else {
				output(report, report.Version)
			}

			if !result.Success {
				return fmt.Errorf("file could not be parsed (%d fatal issues)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also run relationship and reference validation")
	cmd.Flags().BoolVar(&statsOnly, "stats", false, "Print statistics only, omit individuals")
	return cmd
}

func printIndividualTable(individuals []models.Individual) {
	headers := []string{"ID", "GIVEN", "SURNAME", "SEX", "BIRTH", "DEATH"}
	var rows [][]string
	for _, ind := range individuals {
		rows = append(rows, []string{
			ind.ID, ind.GivenName, ind.Surname, ind.Sex,
			eventDate(ind.Birth), eventDate(ind.Death),
		})
	}
	formatTable(headers, rows)
}

func eventDate(ev *models.EventDetail) string {
	if ev == nil || ev.Date == nil {
		return ""
	}
	if ev.Date.Normalized != "" {
		return ev.Date.Normalized
	}
	return ev.Date.Original
}
