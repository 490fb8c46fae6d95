package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shakilabs/ott-price-compare/internal/model"
)

var ErrNotFound = errors.New("not found")

type Options struct {
	CacheTTL  time.Duration
	CacheSize int
}

// FileStore reads the flat JSON data directory. Loaded documents are cached
// per instance; values handed out are shared and must be treated as read-only.
type FileStore struct {
	dir string

	catalog *expirable.LRU[string, any]
	prices  *expirable.LRU[string, *model.PricesPayload]
	history *expirable.LRU[string, []model.HistorySnapshot]
}

func NewFileStore(dir string, opts Options) *FileStore {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	return &FileStore{
		dir:     dir,
		catalog: expirable.NewLRU[string, any](8, nil, opts.CacheTTL),
		prices:  expirable.NewLRU[string, *model.PricesPayload](opts.CacheSize, nil, opts.CacheTTL),
		history: expirable.NewLRU[string, []model.HistorySnapshot](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Path(elem ...string) string {
	return filepath.Join(append([]string{s.dir}, elem...)...)
}

func (s *FileStore) Services() (*model.ServicesPayload, error) {
	if v, ok := s.catalog.Get("services"); ok {
		return v.(*model.ServicesPayload), nil
	}
	data, err := os.ReadFile(s.Path("services.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("services: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read services: %w", err)
	}
	var p model.ServicesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse services: %w", err)
	}
	if p.Services == nil {
		p.Services = []model.Service{}
	}
	s.catalog.Add("services", &p)
	return &p, nil
}

func (s *FileStore) Continents() (json.RawMessage, error) {
	if v, ok := s.catalog.Get("continents"); ok {
		return v.(json.RawMessage), nil
	}
	data, err := os.ReadFile(s.Path("continents.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("continents: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read continents: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parse continents: invalid json")
	}
	raw := json.RawMessage(data)
	s.catalog.Add("continents", raw)
	return raw, nil
}

// Prices loads data/prices/<slug>.json. A missing file or a document without
// a prices array is reported as ErrNotFound.
func (s *FileStore) Prices(slug string) (*model.PricesPayload, error) {
	if p, ok := s.prices.Get(slug); ok {
		return p, nil
	}
	data, err := os.ReadFile(s.pricesPath(slug))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("prices %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read prices %s: %w", slug, err)
	}

	var probe struct {
		Prices json.RawMessage `json:"prices"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse prices %s: %w", slug, err)
	}
	if !isArray(probe.Prices) {
		return nil, fmt.Errorf("prices %s: %w", slug, ErrNotFound)
	}

	var p model.PricesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prices %s: %w", slug, err)
	}
	p.Raw = json.RawMessage(data)
	s.prices.Add(slug, &p)
	return &p, nil
}

// PriceSlugs lists the services that have a prices file.
func (s *FileStore) PriceSlugs() ([]string, error) {
	entries, err := os.ReadDir(s.Path("prices"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ReadPricesDocument returns the prices file as a generic document so a
// rewrite keeps fields this package does not model.
func (s *FileStore) ReadPricesDocument(slug string) (map[string]any, error) {
	data, err := os.ReadFile(s.pricesPath(slug))
	if err != nil {
		return nil, fmt.Errorf("read prices %s: %w", slug, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse prices %s: %w", slug, err)
	}
	return doc, nil
}

func (s *FileStore) WritePricesDocument(slug string, doc map[string]any) error {
	if err := s.WriteJSON(s.pricesPath(slug), doc); err != nil {
		return err
	}
	s.prices.Remove(slug)
	return nil
}

// History returns the valid snapshots of data/history/<slug>.json sorted by
// date. A missing or unreadable file yields no history.
func (s *FileStore) History(slug string) ([]model.HistorySnapshot, error) {
	if h, ok := s.history.Get(slug); ok {
		return h, nil
	}
	data, err := os.ReadFile(s.historyPath(slug))
	if errors.Is(err, os.ErrNotExist) {
		return []model.HistorySnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", slug, err)
	}
	snaps := DecodeHistory(data)
	s.history.Add(slug, snaps)
	return snaps, nil
}

func (s *FileStore) SaveHistory(slug string, snaps []model.HistorySnapshot) error {
	out := append([]model.HistorySnapshot(nil), snaps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if err := s.WriteJSON(s.historyPath(slug), model.HistoryPayload{Snapshots: out}); err != nil {
		return err
	}
	s.history.Remove(slug)
	return nil
}

// Changelog never fails: a missing or corrupt file reads as no updates.
func (s *FileStore) Changelog() model.ChangelogPayload {
	data, err := os.ReadFile(s.Path("reports", "changelog.json"))
	if err != nil {
		return model.ChangelogPayload{Updates: []model.ReportUpdate{}}
	}
	var p model.ChangelogPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Updates == nil {
		return model.ChangelogPayload{Updates: []model.ReportUpdate{}}
	}
	return p
}

func (s *FileStore) Invalidate(slug string) {
	s.prices.Remove(slug)
	s.history.Remove(slug)
}

func (s *FileStore) InvalidateAll() {
	s.catalog.Purge()
	s.prices.Purge()
	s.history.Purge()
}

// WriteJSON writes v as indented JSON through a temp file and rename.
func (s *FileStore) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) pricesPath(slug string) string {
	return s.Path("prices", slug+".json")
}

func (s *FileStore) historyPath(slug string) string {
	return s.Path("history", slug+".json")
}

// DecodeHistory drops snapshots without a string date or an array of
// prices, and price items that are not objects. It never fails.
func DecodeHistory(data []byte) []model.HistorySnapshot {
	var payload struct {
		Snapshots []json.RawMessage `json:"snapshots"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return []model.HistorySnapshot{}
	}

	out := make([]model.HistorySnapshot, 0, len(payload.Snapshots))
	for _, raw := range payload.Snapshots {
		var snap struct {
			Date   json.RawMessage `json:"date"`
			Prices json.RawMessage `json:"prices"`
		}
		if err := json.Unmarshal(raw, &snap); err != nil {
			continue
		}
		var date string
		if err := json.Unmarshal(snap.Date, &date); err != nil || !isString(snap.Date) {
			continue
		}
		var items []json.RawMessage
		if !isArray(snap.Prices) || json.Unmarshal(snap.Prices, &items) != nil {
			continue
		}
		prices := make([]model.HistoryItem, 0, len(items))
		for _, it := range items {
			var item model.HistoryItem
			if !isObject(it) || json.Unmarshal(it, &item) != nil {
				continue
			}
			prices = append(prices, item)
		}
		out = append(out, model.HistorySnapshot{Date: date, Prices: prices})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func firstByte(raw json.RawMessage) byte {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}
	return s[0]
}

func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }
func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
func isString(raw json.RawMessage) bool { return firstByte(raw) == '"' }
