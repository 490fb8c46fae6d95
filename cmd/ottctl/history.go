package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shakilabs/ott-price-compare/internal/service"
)

func newRecordHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "record-history [slug...]",
		Short: "Append today's prices to the history files",
		Long: `Snapshots the current individual-plan KRW price of every country into
history/<slug>.json. Without arguments every active service is recorded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := service.NewHistoryService(a.store, a.logger)
			if len(args) == 0 {
				if err := h.RecordAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "recorded all active services")
				return nil
			}
			for _, slug := range args {
				snap, err := h.Record(cmd.Context(), slug)
				if err != nil {
					return fmt.Errorf("%s: %w", slug, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s (%d countries)\n", slug, snap.Date, len(snap.Prices))
			}
			return nil
		},
	}
}
