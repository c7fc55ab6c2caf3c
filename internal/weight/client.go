package weight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/weighbridge-billing/internal/billing"
	"github.com/nurpe/weighbridge-billing/internal/config"
	"github.com/nurpe/weighbridge-billing/internal/model"
)

// SleepFunc pauses for d or returns early with the context's error. Injected
// so retry tests never touch the wall clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client fetches weighing transactions from the external service. The fetch
// is a read-only GET, so transient failures are retried unconditionally with
// exponential backoff.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	backoffBase  time.Duration
	totalTimeout time.Duration
	sleep        SleepFunc
	log          zerolog.Logger
}

func NewClient(cfg config.WeightServiceConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries:   cfg.MaxRetries,
		backoffBase:  cfg.BackoffBase,
		totalTimeout: cfg.TotalTimeout,
		sleep:        sleepWithContext,
		log:          log,
	}
}

// permanentError marks responses that retrying cannot fix, e.g. the service
// rejecting the date range with a 4xx.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// FetchTransactions runs the retry state machine: attempt, classify, back
// off, attempt again. After maxRetries transient failures the last error is
// surfaced as ErrUpstreamUnavailable. The whole call is bounded by the
// configured total timeout and aborts mid-backoff on cancellation.
func (c *Client) FetchTransactions(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	if c.totalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.totalTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		transactions, err := c.fetchOnce(ctx, from, to)
		if err == nil {
			return transactions, nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return nil, permanent.err
		}
		lastErr = err

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w: %v", billing.ErrUpstreamUnavailable, lastErr)
		}

		delay := c.backoffBase << attempt
		c.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("weight service fetch failed, retrying")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrUpstreamUnavailable, err)
		}
	}
}

type transactionRecord struct {
	TruckID   string `json:"truck_id"`
	ProductID string `json:"product_id"`
	NetWeight *int64 `json:"net_weight"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) fetchOnce(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	endpoint, err := url.Parse(c.baseURL + "/weight")
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("invalid weight service url: %w", err)}
	}
	query := endpoint.Query()
	query.Set("from", billing.FormatTimestamp(from))
	query.Set("to", billing.FormatTimestamp(to))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &permanentError{err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &permanentError{err: fmt.Errorf("weight service rejected request: status %d: %s", resp.StatusCode, body)}
	default:
		return nil, fmt.Errorf("weight service returned status %d", resp.StatusCode)
	}

	var records []transactionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode weight service response: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(records))
	for _, record := range records {
		tx := model.Transaction{
			TruckCode: record.TruckID,
			ProductID: record.ProductID,
		}
		if record.NetWeight != nil {
			tx.NetWeight = *record.NetWeight
		}
		if eventAt, err := billing.ParseTimestamp(record.Timestamp); err == nil {
			tx.EventAt = eventAt
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
