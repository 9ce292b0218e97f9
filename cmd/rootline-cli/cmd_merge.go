package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rootlinehq/rootline/client"
)

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge duplicate person records",
	}
	cmd.AddCommand(mergePreviewCmd())
	cmd.AddCommand(mergeExecuteCmd())
	return cmd
}

func mergePreviewCmd() *cobra.Command {
	var allowGenderMismatch bool
	cmd := &cobra.Command{
		Use:   "preview <source-id> <target-id>",
		Short: "Preview a merge without writing",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.MergeRequest{
				SourcePersonID:      args[0],
				TargetPersonID:      args[1],
				AllowGenderMismatch: allowGenderMismatch,
			}

			preview, err := apiClient.Merge.Preview(context.Background(), req)
			if err != nil {
				fatal("preview merge", err)
			}

			if flagFmt == "table" {
				headers := []string{"KIND", "SOURCE RELATIVE", "TARGET RELATIVE", "MESSAGE"}
				var rows [][]string
				for _, c := range preview.Conflicts {
					rows = append(rows, []string{c.Kind, c.SourceRelativeID, c.TargetRelativeID, c.Message})
				}
				formatTable(headers, rows)
				fmt.Printf("\ncan_execute: %v\n", preview.CanExecute)
				return
			}
			output(preview, fmt.Sprintf("%v", preview.CanExecute))
		},
	}
	cmd.Flags().BoolVar(&allowGenderMismatch, "allow-gender-mismatch", false, "Permit merging persons of different recorded sex")
	return cmd
}

func mergeExecuteCmd() *cobra.Command {
	var allowGenderMismatch bool
	cmd := &cobra.Command{
		Use:   "run <source-id> <target-id>",
		Short: "Merge source into target",
		Long: `Merge the source person into the target person. All of the
source's relationships move to the target in one transaction; a
conflicting parent slot aborts the whole merge.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.MergeRequest{
				SourcePersonID:      args[0],
				TargetPersonID:      args[1],
				AllowGenderMismatch: allowGenderMismatch,
			}

			result, err := apiClient.Merge.Execute(context.Background(), req)
			if err != nil {
				if client.IsConflict(err) {
					fatal("merge blocked", err)
				}
				fatal("execute merge", err)
			}
			output(result, result.TargetPersonID)
		},
	}
	cmd.Flags().BoolVar(&allowGenderMismatch, "allow-gender-mismatch", false, "Permit merging persons of different recorded sex")
	return cmd
}
