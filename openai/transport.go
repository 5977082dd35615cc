// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/cenkalti/backoff/v5"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

const (
	defaultBaseURL       = "https://api.openai.com/v1"
	defaultMaxRetries    = 2
	defaultRetryInterval = 500 * time.Millisecond

	cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
)

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client          *http.Client
	baseURL         string
	apiVersion      string
	apiKey          string
	headers         map[string]string
	azureCredential azcore.TokenCredential
	maxRetries      int
	retryInterval   time.Duration
}

func newHTTPTransport(apiKey string, opts *clientConfig) *httpTransport {
	t := &httpTransport{
		client:          opts.httpClient,
		baseURL:         opts.baseURL,
		apiVersion:      opts.apiVersion,
		apiKey:          apiKey,
		headers:         opts.headers,
		azureCredential: opts.azureCredential,
		maxRetries:      opts.maxRetries,
		retryInterval:   opts.retryInterval,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	if t.maxRetries < 0 {
		t.maxRetries = defaultMaxRetries
	}
	if t.retryInterval <= 0 {
		t.retryInterval = defaultRetryInterval
	}
	return t
}

// do sends the request, retrying transport errors, 429s and 5xx responses.
// Responses with status >= 400 are returned as *af.ServiceError.
func (t *httpTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	attempt := func() (*http.Response, error) {
		resp, err := t.send(ctx, method, path, payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.StatusCode < 400 {
			return resp, nil
		}

		defer resp.Body.Close()
		svcErr := parseErrorResponse(resp)
		if svcErr.Retryable() {
			return nil, svcErr
		}
		return nil, backoff.Permanent(svcErr)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.retryInterval

	return backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(t.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.WarnContext(ctx, "retrying chat completion request", "error", err, "wait", wait)
		}),
	)
}

// send performs a single HTTP round-trip.
func (t *httpTransport) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	u := t.baseURL + path
	if t.apiVersion != "" {
		u += "?" + url.Values{"api-version": {t.apiVersion}}.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if t.azureCredential != nil {
		token, err := t.azureCredential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{cognitiveServicesScope},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get azure token: %w", af.ErrAuth, err)
		}
		slog.DebugContext(ctx, "using Azure AD token authentication", "token_expires_on", token.ExpiresOn)
		req.Header.Set("Authorization", "Bearer "+token.Token)
	} else if _, ok := t.headers["api-key"]; !ok && t.apiKey != "" {
		// Azure key auth uses the api-key header instead.
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", af.ErrService, err)
	}
	return resp, nil
}

// parseErrorResponse reads an error response body and returns a typed error.
func parseErrorResponse(resp *http.Response) *af.ServiceError {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = string(body)
	}
	code := ""
	if apiErr.Error.Code != nil {
		code = fmt.Sprint(apiErr.Error.Code)
	}

	svcErr := &af.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       code,
	}

	switch {
	case code == "content_filter":
		svcErr.Err = af.ErrContentFilter
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		svcErr.Err = af.ErrAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		svcErr.Err = af.ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		svcErr.Err = af.ErrInvalidRequest
	default:
		svcErr.Err = af.ErrService
	}

	return svcErr
}
