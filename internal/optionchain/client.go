// Package optionchain polls the NSE NIFTY option chain and tracks open
// interest moves between polls. It mirrors the snapshot pipeline's delta
// pattern for a different input shape: JSON from a cookie-guarded API instead
// of daily CSV files, with the previous poll held in a small key-value store.
package optionchain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"time"

	"faopulse/internal/config"
	apperrors "faopulse/internal/errors"
)

// stateKey holds the previous poll in the store. A day's TTL keeps stale
// overnight state from polluting the next session's deltas.
const (
	stateKey = "optionchain:last"
	stateTTL = 24 * time.Hour
)

// strikeStep is the NIFTY strike interval; the at-the-money strike is the
// spot price rounded to it.
const strikeStep = 50

// chainResponse is the upstream JSON shape, reduced to the fields used here.
type chainResponse struct {
	Records struct {
		ExpiryDates     []string    `json:"expiryDates"`
		UnderlyingValue float64     `json:"underlyingValue"`
		Data            []chainItem `json:"data"`
	} `json:"records"`
}

type chainItem struct {
	StrikePrice float64    `json:"strikePrice"`
	ExpiryDate  string     `json:"expiryDate"`
	CE          *chainSide `json:"CE"`
	PE          *chainSide `json:"PE"`
}

type chainSide struct {
	OpenInterest         int64 `json:"openInterest"`
	ChangeInOpenInterest int64 `json:"changeinOpenInterest"`
}

// StrikeRow is one strike of the processed chain. The PollDelta fields are
// day-over-poll moves against this process's previous poll; zero on the
// first poll of a session.
type StrikeRow struct {
	Expiry        string  `json:"expiry"`
	Strike        float64 `json:"strike"`
	CallOI        int64   `json:"call_oi"`
	CallOIChange  int64   `json:"call_oi_change"`
	CallPollDelta int64   `json:"call_poll_delta"`
	PutOI         int64   `json:"put_oi"`
	PutOIChange   int64   `json:"put_oi_change"`
	PutPollDelta  int64   `json:"put_poll_delta"`
}

// Chain is the processed option chain: the first two expiries, sorted by
// expiry then strike, with the spot price and its at-the-money strike.
type Chain struct {
	AsOf      time.Time   `json:"as_of"`
	SpotPrice float64     `json:"spot_price"`
	ATMStrike float64     `json:"atm_strike"`
	Expiries  []string    `json:"expiries"`
	Rows      []StrikeRow `json:"rows"`
}

// Client fetches and processes the option chain. The upstream API rejects
// sessions without cookies, so every poll warms up against the site root
// first; the shared cookie jar carries the session between the two requests.
type Client struct {
	httpClient *http.Client
	apiURL     string
	homeURL    string
	userAgent  string
	referer    string
	store      Store
	logger     *slog.Logger
}

// NewClient creates an option chain client over the given state store.
func NewClient(cfg config.SourceConfig, store Store, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create cookie jar", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Jar: jar},
		apiURL:     config.OptionChainURL,
		homeURL:    config.DefaultReferer,
		userAgent:  cfg.UserAgent,
		referer:    config.OptionChainReferer,
		store:      store,
		logger:     logger.With(slog.String("component", "optionchain")),
	}, nil
}

// Snapshot polls the upstream chain, reduces it to the first two expiries,
// and annotates each strike with its open interest move since the previous
// poll. The current poll replaces the stored state on success.
func (c *Client) Snapshot(ctx context.Context) (Chain, error) {
	raw, err := c.fetch(ctx)
	if err != nil {
		return Chain{}, err
	}

	chain, err := process(raw, time.Now())
	if err != nil {
		return Chain{}, err
	}

	c.applyPollDeltas(ctx, &chain)
	c.saveState(ctx, chain)
	return chain, nil
}

// fetch performs the warm-up GET and then the API GET on the same session.
func (c *Client) fetch(ctx context.Context) (*chainResponse, error) {
	if err := c.get(ctx, c.homeURL, nil); err != nil {
		return nil, apperrors.NewNetworkError("option chain cookie warm-up failed", err)
	}

	var resp chainResponse
	if err := c.get(ctx, c.apiURL, &resp); err != nil {
		return nil, apperrors.NewNetworkError("option chain fetch failed", err)
	}
	return &resp, nil
}

// get issues one browser-shaped GET; when out is non-nil the body is decoded
// as JSON into it.
func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParsingError("failed to decode option chain response", err)
	}
	return nil
}

// process reduces the raw response to the first two expiries, sorted by
// expiry then strike.
func process(resp *chainResponse, asOf time.Time) (Chain, error) {
	if len(resp.Records.ExpiryDates) == 0 {
		return Chain{}, apperrors.NewParsingError("option chain response carries no expiries", nil)
	}

	expiries := resp.Records.ExpiryDates
	if len(expiries) > 2 {
		expiries = expiries[:2]
	}
	expiryRank := make(map[string]int, len(expiries))
	for i, e := range expiries {
		expiryRank[e] = i
	}

	rows := make([]StrikeRow, 0, len(resp.Records.Data))
	for _, item := range resp.Records.Data {
		if _, ok := expiryRank[item.ExpiryDate]; !ok {
			continue
		}
		row := StrikeRow{Expiry: item.ExpiryDate, Strike: item.StrikePrice}
		if item.CE != nil {
			row.CallOI = item.CE.OpenInterest
			row.CallOIChange = item.CE.ChangeInOpenInterest
		}
		if item.PE != nil {
			row.PutOI = item.PE.OpenInterest
			row.PutOIChange = item.PE.ChangeInOpenInterest
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Expiry != rows[j].Expiry {
			return expiryRank[rows[i].Expiry] < expiryRank[rows[j].Expiry]
		}
		return rows[i].Strike < rows[j].Strike
	})

	chain := Chain{
		AsOf:      asOf,
		SpotPrice: resp.Records.UnderlyingValue,
		Expiries:  expiries,
		Rows:      rows,
	}
	if chain.SpotPrice > 0 {
		chain.ATMStrike = math.Round(chain.SpotPrice/strikeStep) * strikeStep
	}
	return chain, nil
}

// applyPollDeltas annotates rows with open interest moves since the stored
// previous poll. Absence of stored state and storage faults both leave the
// deltas at zero; this is continuity garnish, not pipeline data.
func (c *Client) applyPollDeltas(ctx context.Context, chain *Chain) {
	raw, found, err := c.store.Get(ctx, stateKey)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to load previous option chain poll",
			slog.String("error", err.Error()))
		return
	}
	if !found {
		return
	}

	var previous Chain
	if err := json.Unmarshal(raw, &previous); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable option chain state",
			slog.String("error", err.Error()))
		return
	}

	type strikeKey struct {
		expiry string
		strike float64
	}
	prior := make(map[strikeKey]StrikeRow, len(previous.Rows))
	for _, row := range previous.Rows {
		prior[strikeKey{row.Expiry, row.Strike}] = row
	}

	for i, row := range chain.Rows {
		if prev, ok := prior[strikeKey{row.Expiry, row.Strike}]; ok {
			chain.Rows[i].CallPollDelta = row.CallOI - prev.CallOI
			chain.Rows[i].PutPollDelta = row.PutOI - prev.PutOI
		}
	}
}

// saveState stores the current poll for the next delta computation.
func (c *Client) saveState(ctx context.Context, chain Chain) {
	raw, err := json.Marshal(chain)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, stateKey, raw, stateTTL); err != nil {
		c.logger.WarnContext(ctx, "failed to store option chain poll",
			slog.String("error", err.Error()))
	}
}
