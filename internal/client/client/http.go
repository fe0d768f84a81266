package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/dmitrijs2005/qatrack/internal/netx"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL. timeout caps
// every request; zero means no cap.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) issuesURL(id string) string {
	if id == "" {
		return c.baseURL + "/api/issues"
	}
	return c.baseURL + "/api/issues/" + url.PathEscape(id)
}

// issuesEnvelope and issueEnvelope mirror the bodies the API wraps its
// results in.
type issuesEnvelope struct {
	Issues []issue.Issue `json:"issues"`
}

type issueEnvelope struct {
	Issue *issue.Issue `json:"issue"`
}

func (c *HTTPClient) ListIssues(ctx context.Context) ([]issue.Issue, error) {
	var out issuesEnvelope
	if err := c.do(ctx, http.MethodGet, c.issuesURL(""), nil, &out); err != nil {
		return nil, err
	}
	if out.Issues == nil {
		out.Issues = []issue.Issue{}
	}
	return out.Issues, nil
}

func (c *HTTPClient) GetIssue(ctx context.Context, id string) (issue.Issue, error) {
	return c.single(ctx, http.MethodGet, c.issuesURL(id), nil)
}

func (c *HTTPClient) CreateIssue(ctx context.Context, in issue.Input) (issue.Issue, error) {
	return c.single(ctx, http.MethodPost, c.issuesURL(""), in)
}

func (c *HTTPClient) UpdateIssue(ctx context.Context, id string, in issue.Input) (issue.Issue, error) {
	return c.single(ctx, http.MethodPut, c.issuesURL(id), in)
}

// single performs a request answered with {"issue": ...}. A 2xx reply
// without an issue carrying an id is a protocol error, never an empty issue.
func (c *HTTPClient) single(ctx context.Context, method, u string, in any) (issue.Issue, error) {
	var out issueEnvelope
	if err := c.do(ctx, method, u, in, &out); err != nil {
		return issue.Issue{}, err
	}
	if out.Issue == nil || out.Issue.ID == "" {
		return issue.Issue{}, ErrMalformedResponse
	}
	return *out.Issue, nil
}

func (c *HTTPClient) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.issuesURL(id), nil, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, u string, in, out any) error {
	err := netx.DoJSON(ctx, c.http, method, u, in, out)
	if err == nil {
		return nil
	}
	return mapError(err)
}

// mapError turns API status codes back into the sentinels the server started
// from, and transport failures into ErrUnavailable.
func mapError(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch se.Code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, se.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, se.Message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, se.Message)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", ErrUnavailable, se)
	}
	return se
}
