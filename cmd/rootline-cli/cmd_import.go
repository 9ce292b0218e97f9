package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootlinehq/rootline/client"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Manage import preview sessions",
	}
	cmd.AddCommand(importPrepareCmd())
	cmd.AddCommand(importListCmd())
	cmd.AddCommand(importGetCmd())
	cmd.AddCommand(importTreeCmd())
	cmd.AddCommand(importStatsCmd())
	cmd.AddCommand(importDecideCmd())
	cmd.AddCommand(importDecisionsCmd())
	cmd.AddCommand(importDiscardCmd())
	return cmd
}

func importPrepareCmd() *cobra.Command {
	var filePath, matchesJSON string
	cmd := &cobra.Command{
		Use:   "prepare <upload-id>",
		Short: "Parse a GEDCOM file into a preview session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := os.ReadFile(filePath)
			if err != nil {
				fatal("read file", err)
			}

			req := &client.PrepareImportRequest{Content: string(raw)}
			if matchesJSON != "" {
				if err := json.Unmarshal([]byte(matchesJSON), &req.DuplicateMatches); err != nil {
					fatal("parse matches", err)
				}
			}

			result, err := apiClient.Imports.Prepare(context.Background(), args[0], req)
			if err != nil {
				fatal("prepare import", err)
			}

			output(result, args[0])

			if !result.Success {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "GEDCOM file to upload")
	cmd.MarkFlagRequired("file") //nolint:errcheck
	cmd.Flags().StringVar(&matchesJSON, "matches", "", "Duplicate matches as JSON array")
	return cmd
}

func importListCmd() *cobra.Command {
	var (
		page, limit       int
		sortBy, sortOrder string
		search            string
	)
	cmd := &cobra.Command{
		Use:   "list <upload-id>",
		Short: "List a session's individuals",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.ListIndividualsOptions{
				Page:      page,
				Limit:     limit,
				SortBy:    sortBy,
				SortOrder: sortOrder,
				Search:    search,
			}

			result, err := apiClient.Imports.ListIndividuals(context.Background(), args[0], opts)
			if err != nil {
				fatal("list individuals", err)
			}

			if flagFmt == "table" {
				headers := []string{"ID", "GIVEN", "SURNAME", "STATUS"}
				var rows [][]string
				for _, ind := range result.Individuals {
					rows = append(rows, []string{ind.ID, ind.GivenName, ind.Surname, ind.Status})
				}
				formatTable(headers, rows)
				return
			}
			if flagFmt == "quiet" {
				for _, ind := range result.Individuals {
					fmt.Println(ind.ID)
				}
				return
			}
			output(result, "")
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort field")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "Sort order: asc|desc")
	cmd.Flags().StringVar(&search, "search", "", "Name substring filter")
	return cmd
}

func importGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <upload-id> <individual-id>",
		Short: "Show one individual with resolved relatives",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			detail, err := apiClient.Imports.GetIndividual(context.Background(), args[0], args[1])
			if err != nil {
				fatal("get individual", err)
			}
			output(detail, detail.ID)
		},
	}
}

func importTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <upload-id>",
		Short: "Show the session's flattened relationship tuples",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rels, err := apiClient.Imports.Tree(context.Background(), args[0])
			if err != nil {
				fatal("get tree", err)
			}

			if flagFmt == "table" {
				headers := []string{"TYPE", "FROM", "TO", "FAMILY"}
				var rows [][]string
				for _, r := range rels {
					rows = append(rows, []string{r.Type, r.FromID, r.ToID, r.FamilyID})
				}
				formatTable(headers, rows)
				return
			}
			output(rels, "")
		},
	}
}

func importStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <upload-id>",
		Short: "Show statistics for a preview session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := apiClient.Imports.Statistics(context.Background(), args[0])
			if err != nil {
				fatal("get statistics", err)
			}
			output(stats, "")
		},
	}
}

func importDecideCmd() *cobra.Command {
	var decisionsJSON, filePath string
	cmd := &cobra.Command{
		Use:   "decide <upload-id>",
		Short: "Save resolution decisions for a session",
		Long: `Save a batch of resolution decisions. Each decision maps an
individual id to one of: merge, import_as_new, skip.
One invalid entry rejects the whole batch.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw := []byte(decisionsJSON)
			if filePath != "" {
				var err error
				raw, err = os.ReadFile(filePath)
				if err != nil {
					fatal("read decisions file", err)
				}
			}
			if len(raw) == 0 {
				fatal("decide", fmt.Errorf("either --decisions or --file is required"))
			}

			var decisions []client.ResolutionDecision
			if err := json.Unmarshal(raw, &decisions); err != nil {
				fatal("parse decisions", err)
			}

			summary, err := apiClient.Imports.SaveDecisions(context.Background(), args[0], decisions)
			if err != nil {
				fatal("save decisions", err)
			}
			output(summary, args[0])
		},
	}
	cmd.Flags().StringVar(&decisionsJSON, "decisions", "", "Decisions as JSON array")
	cmd.Flags().StringVar(&filePath, "file", "", "Read decisions from a JSON file")
	return cmd
}

func importDecisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decisions <upload-id>",
		Short: "Show saved resolution decisions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			decisions, err := apiClient.Imports.GetDecisions(context.Background(), args[0])
			if err != nil {
				fatal("get decisions", err)
			}
			output(decisions, "")
		},
	}
}

func importDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <upload-id>",
		Short: "Discard a preview session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Imports.Discard(context.Background(), args[0]); err != nil {
				fatal("discard import", err)
			}
			fmt.Println("discarded")
		},
	}
}
