package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shakilabs/ott-price-compare/internal/rates"
)

func newFetchRatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-rates",
		Short: "Download exchange rates and reprice every prices file",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := a.v.GetString("rates_url")
			client := rates.NewClient(url, a.cfg.RatesTimeout)
			r, err := rates.NewUpdater(client, a.store, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d currencies, 1 USD = %.2f KRW (%s)\n",
				len(r.Rates), r.Rates["KRW"], r.FetchedAt)
			return nil
		},
	}
	cmd.Flags().String("url", "", "rates endpoint (default from config)")
	_ = a.v.BindPFlag("rates_url", cmd.Flags().Lookup("url"))
	return cmd
}
