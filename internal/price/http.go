package price

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 2
)

// getJSON performs a GET with bounded retries. Only transient failures are
// retried; 4xx responses and malformed payloads return immediately.
func getJSON(ctx context.Context, client *http.Client, provider, symbol, url string, out any) error {
	b := &backoff.Backoff{
		Min:    200 * time.Millisecond,
		Max:    2 * time.Second,
		Jitter: true,
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = tryGetJSON(ctx, client, provider, symbol, url, out)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt >= maxRetries {
			return err
		}

		select {
		case <-time.After(b.Duration()):
		case <-ctx.Done():
			return newTransient(provider, symbol, ctx.Err())
		}
	}
}

func tryGetJSON(ctx context.Context, client *http.Client, provider, symbol, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return newPermanent(provider, symbol, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return newTransient(provider, symbol, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return newTransient(provider, symbol, errors.Errorf("upstream returned %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return newPermanent(provider, symbol, errors.Errorf("upstream returned %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newPermanent(provider, symbol, errors.Wrap(err, "malformed payload"))
	}
	return nil
}
