package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shakilabs/ott-price-compare/internal/seo"
)

func newSitemapCmd(a *app) *cobra.Command {
	var out, siteURL string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Generate sitemap.xml from the price data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if siteURL == "" {
				siteURL = a.cfg.SiteURL
			}
			base := seo.NormalizeSiteURL(siteURL)
			if base == "" {
				return fmt.Errorf("invalid site url %q", siteURL)
			}
			body, err := seo.NewPages(a.store).Sitemap(base, time.Now())
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write sitemap: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&siteURL, "site-url", "", "public site URL (default from config)")
	return cmd
}
