package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTriggerNotConfigured is returned when CI credentials are missing
var ErrTriggerNotConfigured = errors.New("jenkins credentials not configured")

// JenkinsConfig holds the CI job that runs batch scans
type JenkinsConfig struct {
	URL      string
	User     string
	APIToken string
	Job      string
	JobToken string
}

// jenkinsGateway triggers the scan job through Jenkins' remote build API
type jenkinsGateway struct {
	cfg        JenkinsConfig
	httpClient *http.Client
}

// NewJenkinsGateway creates a new Jenkins gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewJenkinsGateway(cfg JenkinsConfig) *jenkinsGateway {
	return &jenkinsGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TriggerScanJob queues a manual scan build
func (g *jenkinsGateway) TriggerScanJob(ctx context.Context) error {
	if g.cfg.User == "" || g.cfg.APIToken == "" {
		return ErrTriggerNotConfigured
	}

	query := url.Values{"token": {g.cfg.JobToken}, "SCAN_TYPE": {"manual"}}
	endpoint := fmt.Sprintf("%s/job/%s/buildWithParameters?%s",
		strings.TrimRight(g.cfg.URL, "/"), url.PathEscape(g.cfg.Job), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(g.cfg.User, g.cfg.APIToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jenkins request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TriggerError{Status: resp.StatusCode, Details: strings.TrimSpace(string(body))}
	}
	return nil
}

// TriggerError carries Jenkins' non-2xx answer back to the caller
type TriggerError struct {
	Status  int
	Details string
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("jenkins responded with status: %d", e.Status)
}
