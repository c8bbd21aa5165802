package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Cotezzo/leotta-fm/pkg/adaptivelimit"
)

const fetchTimeout = 10 * time.Second

// FetchClient is the production Getter: plain one-shot GETs guarded by an
// adaptive rate limiter so a struggling station host is polled more gently
// instead of being hammered.
type FetchClient struct {
	http    *http.Client
	limiter *adaptivelimit.Limiter
}

func NewFetchClient() *FetchClient {
	return &FetchClient{
		http:    &http.Client{Timeout: fetchTimeout},
		limiter: adaptivelimit.New(5, 1, 20, 1, 0.5),
	}
}

func (c *FetchClient) Get(url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		c.limiter.Failure()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.limiter.Failure()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.limiter.Failure()
		return nil, fmt.Errorf("body read failed: %w", err)
	}

	c.limiter.Success()
	return body, nil
}
