package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Inspect durable person records",
	}
	cmd.AddCommand(personGetCmd())
	cmd.AddCommand(personRelationshipsCmd())
	return cmd
}

func personGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a person by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := apiClient.Persons.Get(context.Background(), args[0])
			if err != nil {
				fatal("get person", err)
			}
			output(p, p.ID)
		},
	}
}

func personRelationshipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships <id>",
		Short: "List a person's relationship edges",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rels, err := apiClient.Persons.Relationships(context.Background(), args[0])
			if err != nil {
				fatal("list relationships", err)
			}

			if flagFmt == "table" {
				headers := []string{"PERSON", "RELATIVE", "KIND"}
				var rows [][]string
				for _, r := range rels {
					rows = append(rows, []string{r.PersonID, r.RelativeID, r.Kind})
				}
				formatTable(headers, rows)
				return
			}
			output(rels, "")
		},
	}
}
