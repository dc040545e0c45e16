package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const statusPollInterval = 250 * time.Millisecond

// WebDriverStatus is the body of a WebDriver server's /status resource.
type WebDriverStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// WaitForWebDriver queries the /status resource of a WebDriver server until it reports that it
// is ready to create sessions, printing progress to output.
func WaitForWebDriver(ctx context.Context, baseURL string, timeout time.Duration, output io.Writer) (WebDriverStatus, error) {
	statusURL := strings.TrimSuffix(baseURL, "/") + "/status"
	fmt.Fprintf(output, "Connecting to WebDriver at %s", baseURL)

	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		fmt.Fprint(output, ".")
		status, err := queryWebDriverStatus(ctx, statusURL)
		if err == nil && status.Ready {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "WebDriver is ready: %s\n", status.Message)
			return status, nil
		}
		if err == nil {
			err = fmt.Errorf("WebDriver is not ready: %s", status.Message)
		}
		lastErr = err
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return WebDriverStatus{}, fmt.Errorf("timed out, result of last query was: %w", lastErr)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return WebDriverStatus{}, ctx.Err()
		case <-time.After(statusPollInterval):
		}
	}
}

func queryWebDriverStatus(ctx context.Context, statusURL string) (WebDriverStatus, error) {
	body, status, err := doRequest(ctx, http.MethodGet, statusURL)
	if err != nil {
		return WebDriverStatus{}, err
	}
	if status != http.StatusOK {
		return WebDriverStatus{}, fmt.Errorf("WebDriver returned status code %d", status)
	}
	var reply struct {
		Value WebDriverStatus `json:"value"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return WebDriverStatus{}, fmt.Errorf("malformed status response from WebDriver: %s", string(body))
	}
	return reply.Value, nil
}

func doRequest(ctx context.Context, method, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}
