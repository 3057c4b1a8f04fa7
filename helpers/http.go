package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"
)

// HTTP client and header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	}
)

// RateLimitedError marks a response rejected by the upstream rate limiter.
type RateLimitedError struct {
	URL        string
	RetryAfter string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited fetching %s; retry after %s", e.URL, e.RetryAfter)
}

// FetchPage sends an HTTP GET request with a browser-like User-Agent,
// converts the response body to UTF-8 (if needed), and returns it as a string.
func FetchPage(ctx context.Context, url string, timeout time.Duration) (string, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set a random User-Agent header
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return "", &RateLimitedError{URL: url, RetryAfter: resp.Header.Get("Retry-After")}
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s unexpected status code: %d", url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return string(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return "", fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return buf.String(), nil
}
