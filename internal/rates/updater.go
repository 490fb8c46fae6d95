package rates

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// PriceFiles is the part of the store the updater rewrites.
type PriceFiles interface {
	Path(elem ...string) string
	WriteJSON(path string, v any) error
	PriceSlugs() ([]string, error)
	ReadPricesDocument(slug string) (map[string]any, error)
	WritePricesDocument(slug string, doc map[string]any) error
}

type Updater struct {
	source Source
	files  PriceFiles
	logger *slog.Logger
}

func NewUpdater(source Source, files PriceFiles, logger *slog.Logger) *Updater {
	return &Updater{source: source, files: files, logger: logger}
}

// Run fetches the latest rates, saves them to exchange-rates.json and
// reprices every prices file.
func (u *Updater) Run(ctx context.Context) (Rates, error) {
	r, err := u.source.Fetch(ctx)
	if err != nil {
		return Rates{}, fmt.Errorf("fetch rates: %w", err)
	}
	if err := u.files.WriteJSON(u.files.Path("exchange-rates.json"), r); err != nil {
		return Rates{}, fmt.Errorf("save rates: %w", err)
	}
	u.logger.InfoContext(ctx, "exchange rates updated", "source", u.source.Name(), "currencies", len(r.Rates), "date", r.FetchedAt)

	slugs, err := u.files.PriceSlugs()
	if err != nil {
		return r, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, slug := range slugs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := u.files.ReadPricesDocument(slug)
			if err != nil {
				return err
			}
			Reconvert(doc, r)
			if err := u.files.WritePricesDocument(slug, doc); err != nil {
				return fmt.Errorf("write prices %s: %w", slug, err)
			}
			u.logger.DebugContext(ctx, "prices repriced", "service", slug)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return r, err
	}
	return r, nil
}
