package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Runner executes untrusted code against stdin and returns the captured
// output. A non-empty stderr means the code emitted runtime errors.
type Runner interface {
	Execute(ctx context.Context, language, code, stdin string) (stdout, stderr string, err error)
}

const defaultTimeout = 10 * time.Second

// Client calls a Piston-compatible execution API. Single attempt, no
// retries; transport errors surface as failures.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
	Stdin    string        `json:"stdin"`
}

type executeFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executeResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
	} `json:"run"`
}

func (c *Client) Execute(ctx context.Context, language, code, stdin string) (string, string, error) {
	payload := executeRequest{
		Language: language,
		Version:  "*",
		Files:    []executeFile{{Name: "main", Content: code}},
		Stdin:    stdin,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("judge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("judge returned status %d", resp.StatusCode)
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("failed to decode judge response: %w", err)
	}
	return out.Run.Stdout, out.Run.Stderr, nil
}
