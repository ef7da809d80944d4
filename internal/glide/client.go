package glide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
)

const (
	mutatePath      = "/api/function/mutateTables"
	kindSetColumns  = "set-columns-in-row"
	maxErrorBodyLen = 512
)

type Config struct {
	BaseURL   string
	AppID     string
	Secret    string
	TableName string
	Timeout   time.Duration
	RetryMax  int
}

// Client writes column values into rows of a Glide table.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

type mutation struct {
	Kind         string         `json:"kind"`
	TableName    string         `json:"tableName"`
	RowID        string         `json:"rowID"`
	ColumnValues map[string]any `json:"columnValues"`
}

type mutateRequest struct {
	AppID     string     `json:"appID"`
	Mutations []mutation `json:"mutations"`
}

func New(cfg Config) *Client {
	// the bearer secret is attached by the oauth2 transport
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Secret,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = cfg.Timeout

	rc := &retryablehttp.Client{
		HTTPClient:   httpClient,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RetryMax:     cfg.RetryMax,
	}
	if cfg.RetryMax > 0 {
		rc.CheckRetry = retryablehttp.DefaultRetryPolicy
		rc.RequestLogHook = func(_ retryablehttp.Logger, r *http.Request, attempt int) {
			if attempt > 0 {
				logger.Warn("retrying glide mutation", map[string]any{
					"url":     r.URL.String(),
					"attempt": attempt,
				})
			}
		}
	} else {
		rc.CheckRetry = func(_ context.Context, _ *http.Response, err error) (bool, error) {
			return false, err
		}
	}

	return &Client{cfg: cfg, http: rc}
}

// SetColumns sets columns on one row of the configured table.
func (c *Client) SetColumns(ctx context.Context, rowID string, columns map[string]any) error {
	if c.cfg.AppID == "" || c.cfg.Secret == "" || c.cfg.TableName == "" {
		return fmt.Errorf("glide: app id, secret and table name are required")
	}

	body, err := json.Marshal(mutateRequest{
		AppID: c.cfg.AppID,
		Mutations: []mutation{{
			Kind:         kindSetColumns,
			TableName:    c.cfg.TableName,
			RowID:        rowID,
			ColumnValues: columns,
		}},
	})
	if err != nil {
		return fmt.Errorf("glide: failed to marshal mutation: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + mutatePath
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("glide: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("glide: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("glide: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
