package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rootlinehq/rootline/client"
)

func newAuditCmd() *cobra.Command {
	var (
		entityType, entityID, action, since string
		limit, offset                       int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit log",
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.AuditQueryOptions{
				EntityType: entityType,
				EntityID:   entityID,
				Action:     action,
				Limit:      limit,
				Offset:     offset,
			}
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					fatal("parse --since (want RFC3339)", err)
				}
				opts.Since = &t
			}

			entries, hasMore, err := apiClient.Audit.Query(context.Background(), opts)
			if err != nil {
				fatal("query audit", err)
			}

			if flagFmt == "table" {
				headers := []string{"TIME", "ACTION", "ENTITY", "ID"}
				var rows [][]string
				for _, e := range entries {
					rows = append(rows, []string{
						e.CreatedAt.Format(time.RFC3339), e.Action, e.EntityType, e.EntityID,
					})
				}
				formatTable(headers, rows)
				return
			}
			output(map[string]any{"data": entries, "has_more": hasMore}, "")
		},
	}
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Filter by entity type")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "Filter by entity id")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action")
	cmd.Flags().StringVar(&since, "since", "", "Only entries after this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}
