package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shakilabs/ott-price-compare/internal/service"
	"github.com/shakilabs/ott-price-compare/internal/trend"
)

func newTrendsCmd(a *app) *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "trends <slug>",
		Short: "Print the trend view for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := service.NewTrendService(a.store, a.logger).Trends(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asTable {
				return renderTrends(cmd.OutOrStdout(), res)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "print rankings as tables instead of JSON")
	return cmd
}

func renderTrends(w io.Writer, res trend.Result) error {
	fmt.Fprintf(w, "%s  as of %s  (previous snapshot %s)\n\n", res.ServiceSlug, deref(res.AsOf), deref(res.PreviousSnapshotDate))

	fmt.Fprintln(w, "Cheapest")
	cheapest := tablewriter.NewWriter(w)
	cheapest.Header("#", "Country", "Local", "USD", "KRW", "Savings")
	for i, r := range res.Cheapest {
		if err := cheapest.Append([]string{
			strconv.Itoa(i+1),
			r.Country+" ("+r.CountryCode+")",
			money(r.LocalMonthly, 2)+" "+r.Currency,
			money(r.USD, 2),
			money(r.KRW, 0),
			strconv.Itoa(r.SavingsPercent) + "%",
		}); err != nil {
			return err
		}
	}
	if err := cheapest.Render(); err != nil {
		return err
	}

	if len(res.BiggestDrops) == 0 {
		fmt.Fprintln(w, "\nNo price drops since the previous snapshot.")
		return nil
	}
	fmt.Fprintln(w, "\nBiggest drops")
	drops := tablewriter.NewWriter(w)
	drops.Header("Country", "Before", "Now", "Change", "%")
	for _, d := range res.BiggestDrops {
		if err := drops.Append([]string{
			d.Country+" ("+d.CountryCode+")",
			humanize.Commaf(d.PreviousKRW),
			humanize.Commaf(d.CurrentKRW),
			humanize.Commaf(d.ChangeKRW),
			strconv.FormatFloat(d.ChangePercent, 'f', 1, 64),
		}); err != nil {
			return err
		}
	}
	return drops.Render()
}

func money(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return humanize.CommafWithDigits(*v, decimals)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
