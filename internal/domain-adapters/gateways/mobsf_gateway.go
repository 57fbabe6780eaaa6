package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// Scanning service endpoints
const (
	loginPath     = "/login/"
	uploadPath    = "/api/v1/upload"
	scanPath      = "/api/v1/scan"
	scorecardPath = "/api/v1/scorecard"
	reportPath    = "/api/v1/download_pdf"
	iconPathFmt   = "/download/%s-icon.png"
)

// maxErrorBody bounds how much of an error response is kept for logging
const maxErrorBody = 512

// MobSFConfig holds the connection settings of the scanning service
type MobSFConfig struct {
	BaseURL        string
	APIKey         string
	Username       string
	Password       string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	// ScanTimeout bounds the scan call, which returns only once analysis ends
	ScanTimeout time.Duration
}

// mobsfGateway implements ScannerGateway against the MobSF web API.
// The cookie jar carries the login session across calls.
type mobsfGateway struct {
	cfg          MobSFConfig
	httpClient   *http.Client
	uploadClient *http.Client
	scanClient   *http.Client
	logger       interfaces.Logger
}

// NewMobSFGateway creates a new scanning service gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewMobSFGateway(cfg MobSFConfig, logger interfaces.Logger) (*mobsfGateway, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid scanner host %q: %w", cfg.BaseURL, err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = 60 * time.Second
	}
	if cfg.ScanTimeout == 0 {
		cfg.ScanTimeout = 30 * time.Minute
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &mobsfGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout,
		},
		uploadClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.UploadTimeout,
		},
		scanClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.ScanTimeout,
		},
		logger: logger,
	}, nil
}

// Authenticate logs in with the form credentials and the page's CSRF token.
// A login that lands back on the login page is rejected.
func (g *mobsfGateway) Authenticate(ctx context.Context) error {
	loginURL := g.cfg.BaseURL + loginPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: login page request failed: %v", gateways.ErrAuth, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: login page returned status %d", gateways.ErrAuth, resp.StatusCode)
	}

	token, err := ExtractCSRFToken(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", gateways.ErrAuth, err)
	}

	form := url.Values{
		"username":            {g.cfg.Username},
		"password":            {g.cfg.Password},
		"csrfmiddlewaretoken": {token},
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", loginURL)

	loginResp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: login request failed: %v", gateways.ErrAuth, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer loginResp.Body.Close()
	_, _ = io.Copy(io.Discard, loginResp.Body)

	// Redirects have been followed; the final request tells where we landed
	if strings.HasSuffix(loginResp.Request.URL.Path, loginPath) {
		return fmt.Errorf("%w: please check your credentials", gateways.ErrAuth)
	}

	return nil
}

// Upload streams the package as multipart form data and returns the scan hash
func (g *mobsfGateway) Upload(ctx context.Context, filePath string) (string, error) {
	//nolint:gosec // G304: filePath comes from the configured scan directory
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open package: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(fileHeader(filepath.Base(filePath)))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := g.newRequest(ctx, http.MethodPost, uploadPath, pr)
	if err != nil {
		_ = pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	g.logger.Debug("Uploading file", interfaces.F("file", filePath), interfaces.F("url", req.URL.String()))

	resp, err := g.uploadClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	g.logger.Debug("Upload response", interfaces.F("status", resp.StatusCode))
	if err := checkStatus(resp, "upload"); err != nil {
		return "", err
	}

	var upload struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if upload.Hash == "" {
		return "", fmt.Errorf("upload response has no hash")
	}

	return upload.Hash, nil
}

// TriggerScan runs the scan; the service answers once scanning is complete
func (g *mobsfGateway) TriggerScan(ctx context.Context, scanHash string) error {
	resp, err := g.postHash(ctx, g.scanClient, scanPath, scanHash)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return checkStatus(resp, "scan")
}

// Scorecard fetches and decodes the scorecard of a hash
func (g *mobsfGateway) Scorecard(ctx context.Context, scanHash string) (*entities.Scorecard, error) {
	resp, err := g.postHash(ctx, g.httpClient, scorecardPath, scanHash)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if err := checkStatus(resp, "scorecard"); err != nil {
		return nil, err
	}

	var scorecard entities.Scorecard
	if err := json.NewDecoder(resp.Body).Decode(&scorecard); err != nil {
		return nil, fmt.Errorf("failed to parse scorecard: %w", err)
	}

	return &scorecard, nil
}

// DownloadIcon copies the app icon into w.
// It returns ErrNotFound on 404 and an error for non-image content.
func (g *mobsfGateway) DownloadIcon(ctx context.Context, scanHash string, w io.Writer) error {
	req, err := g.newRequest(ctx, http.MethodGet, fmt.Sprintf(iconPathFmt, scanHash), nil)
	if err != nil {
		return err
	}

	g.logger.Debug("Requesting icon", interfaces.F("url", req.URL.String()))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("icon request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return gateways.ErrNotFound
	}
	if err := checkStatus(resp, "icon"); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unexpected content type received: %q", contentType)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read icon: %w", err)
	}
	return nil
}

// DownloadPDF copies the PDF report into w
func (g *mobsfGateway) DownloadPDF(ctx context.Context, scanHash string, w io.Writer) error {
	resp, err := g.postHash(ctx, g.httpClient, reportPath, scanHash)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if err := checkStatus(resp, "pdf report"); err != nil {
		return err
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read pdf report: %w", err)
	}
	return nil
}

// postHash posts the form field "hash" to an API endpoint
func (g *mobsfGateway) postHash(ctx context.Context, client *http.Client, path, scanHash string) (*http.Response, error) {
	form := url.Values{"hash": {scanHash}}
	req, err := g.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	g.logger.Debug("Response received", interfaces.F("path", path), interfaces.F("status", resp.StatusCode))
	return resp, nil
}

// newRequest builds an API request carrying the raw API key
func (g *mobsfGateway) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", g.cfg.APIKey)
	return req, nil
}

func fileHeader(name string) textproto.MIMEHeader {
	return textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name))},
		"Content-Type":        {"application/octet-stream"},
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// checkStatus turns a non-2xx response into an error with a bounded body excerpt
func checkStatus(resp *http.Response, what string) error {
	if isSuccess(resp.StatusCode) {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s failed with status %d: %s", what, resp.StatusCode, strings.TrimSpace(string(body)))
}
