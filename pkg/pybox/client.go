// Package pybox is a client for the pybox remote Python execution service.
//
// The service runs Python code in isolated containers. The client packages
// source files into a tar archive, submits them with a metadata document,
// and tracks the execution to completion:
//
//	c := pybox.New("http://localhost:8080")
//
//	result, err := c.ExecuteSync(ctx, pybox.Files{
//	    "main.py": `print("hello")`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Stdout)
//
// Code can come from an in-memory file set ([Files], [BinaryFiles]), a local
// file or directory ([Path]), or pre-built archive bytes ([Tar]). When no
// entrypoint is given, one is inferred from the archive's members.
//
// Long-running code is submitted with [Client.ExecuteAsync], which returns
// an execution ID to poll via [Client.GetExecution] or
// [Client.WaitForCompletion], and to stop via [Client.Kill].
package pybox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to one pybox service. It holds no per-execution state; the
// only shared resource is the underlying HTTP client, whose transport
// handles connection reuse and concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for custom transports,
// proxies, or TLS settings.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout bounds each HTTP exchange. This is independent of the maxWait
// passed to WaitForCompletion, which bounds a whole polling loop spanning
// many requests. Default is 5 minutes.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// New creates a client for the service at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteSync submits code and blocks until the service returns the terminal
// result. No client-side polling is involved; the single HTTP exchange spans
// the whole execution, so the client timeout must cover it.
func (c *Client) ExecuteSync(ctx context.Context, src Source, opts ...ExecOption) (*ExecutionResult, error) {
	resp, err := c.submit(ctx, "/api/v1/exec/sync", src, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &result, nil
}

// ExecuteAsync submits code and returns the execution ID as soon as the
// service acknowledges receipt, before execution starts.
func (c *Client) ExecuteAsync(ctx context.Context, src Source, opts ...ExecOption) (string, error) {
	resp, err := c.submit(ctx, "/api/v1/exec/async", src, opts)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", statusError(resp)
	}

	var ack AsyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return ack.ExecutionID, nil
}

// GetExecution fetches the current, possibly non-terminal, result of an
// execution. Returns ErrNotFound when the ID is unknown to the service.
func (c *Client) GetExecution(ctx context.Context, executionID string) (*ExecutionResult, error) {
	url := fmt.Sprintf("%s/api/v1/executions/%s", c.baseURL, executionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching execution %s: %w", executionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("execution %s: %w", executionID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &result, nil
}

// Kill terminates a running execution. Returns ErrNotFound when the ID is
// unknown to the service.
func (c *Client) Kill(ctx context.Context, executionID string) error {
	url := fmt.Sprintf("%s/api/v1/executions/%s", c.baseURL, executionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("killing execution %s: %w", executionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("execution %s: %w", executionID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// Eval executes a snippet through the JSON-only eval endpoint, skipping
// archive construction. With EvalLastExpr set, the value of a trailing
// expression is returned in ExecutionResult.Result, REPL style.
func (c *Client) Eval(ctx context.Context, evalReq *EvalRequest) (*ExecutionResult, error) {
	body, err := json.Marshal(evalReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/eval", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluating code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &result, nil
}

// Health probes the service's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("checking health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// submit composes the request and POSTs the two-part multipart body: the
// archive under "tar" and the metadata JSON under "metadata".
func (c *Client) submit(ctx context.Context, path string, src Source, opts []ExecOption) (*http.Response, error) {
	tarData, metadata, err := composeRequest(src, opts)
	if err != nil {
		return nil, err
	}

	body, contentType, err := buildMultipartBody(tarData, metadata)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting execution: %w", err)
	}
	return resp, nil
}

func buildMultipartBody(tarData []byte, metadata *Metadata) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	tarPart, err := writer.CreateFormFile("tar", "code.tar")
	if err != nil {
		return nil, "", fmt.Errorf("creating tar part: %w", err)
	}
	if _, err := tarPart.Write(tarData); err != nil {
		return nil, "", fmt.Errorf("writing tar part: %w", err)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := writer.WriteField("metadata", string(metadataJSON)); err != nil {
		return nil, "", fmt.Errorf("writing metadata part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// statusError drains a bounded prefix of the response body for diagnostics.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
