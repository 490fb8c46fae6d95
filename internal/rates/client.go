package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client reads the open.er-api.com latest-rates endpoint.
type Client struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

func (c *Client) Name() string { return "open-er-api" }

func (c *Client) Fetch(ctx context.Context) (Rates, error) {
	if c.url == "" {
		return Rates{}, errors.New("rates url missing")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Rates{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return Rates{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Rates{}, fmt.Errorf("%s: %s", c.Name(), resp.Status)
	}

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rates{}, fmt.Errorf("%s: decode: %w", c.Name(), err)
	}
	if payload.Result != "success" {
		return Rates{}, fmt.Errorf("%s: result %q", c.Name(), payload.Result)
	}

	out := Rates{FetchedAt: dateOf(c.now()), Base: Base, Rates: make(map[string]float64, len(Needed))}
	for _, code := range Needed {
		if r, ok := payload.Rates[code]; ok && r > 0 {
			out.Rates[code] = r
		}
	}
	if _, ok := out.Rates["KRW"]; !ok {
		return Rates{}, fmt.Errorf("%s: KRW rate missing", c.Name())
	}
	return out, nil
}
