// Package processing talks to the document-processing backend that fills the
// form templates, and tracks the state of a session's submission.
package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"formwizard-go/models"
)

const (
	processPath  = "/api/process-forms"
	downloadPath = "/api/download/"

	maxResponseBytes = 1 << 20
)

// BackendError is a failure reported by the backend itself, as opposed to a
// transport failure.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	log     logrus.FieldLogger
}

// NewClient returns a client for the backend at baseURL. Connection errors
// and gateway-type statuses are retried up to retries times; a backend that
// answers with its own failure is not.
func NewClient(baseURL string, timeout time.Duration, retries int, log logrus.FieldLogger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.CheckRetry = retryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{log}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
		log:     log,
	}
}

func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// ProcessForms sends the whole record to the backend and returns the
// generated documents.
func (c *Client) ProcessForms(ctx context.Context, record models.PersonRecord) (*models.ProcessResponse, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "building process request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling processing backend")
	}
	defer resp.Body.Close()

	var out models.ProcessResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unreadable response from processing backend (status %d)", resp.StatusCode),
		}
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Failed to process forms"
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}

	c.log.WithField("files", len(out.DownloadLinks)).Info("Forms processed")
	return &out, nil
}

// DownloadURL is where the backend serves filename. The name is passed
// through unchanged apart from path escaping.
func (c *Client) DownloadURL(filename string) string {
	return c.baseURL + downloadPath + url.PathEscape(filename)
}

type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Disposition   string
}

// Download opens filename on the backend. The caller closes Body.
func (c *Client) Download(ctx context.Context, filename string) (*Download, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(filename), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building download request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading %s", filename)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)
		if body.Error == "" {
			body.Error = fmt.Sprintf("download of %s failed with status %d", filename, resp.StatusCode)
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	return &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Disposition:   resp.Header.Get("Content-Disposition"),
	}, nil
}

// leveledLogger routes retryablehttp's logging through logrus.
type leveledLogger struct {
	log logrus.FieldLogger
}

func (l leveledLogger) entry(keysAndValues []interface{}) logrus.FieldLogger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.log.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Info(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn(msg)
}
