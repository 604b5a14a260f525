package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/ruteri/cfn-random-string/api"
)

// ProviderClient talks to the provider's HTTP server.
type ProviderClient struct {
	// ServerAddr is the base URL of the provider server, e.g. http://127.0.0.1:8080
	ServerAddr string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *ProviderClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// SendEvent posts a custom resource event and returns the response document.
// A FAILED document is not an error; callers should inspect Status.
func (c *ProviderClient) SendEvent(ctx context.Context, event cfn.Event) (*cfn.Response, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("could not encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ServerAddr+"/api/resource", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var response cfn.Response
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Generate asks the server for a secret of length random bytes. Zero uses the
// server default.
func (c *ProviderClient) Generate(ctx context.Context, length int) (string, error) {
	endpoint := c.ServerAddr + "/api/generate"
	if length != 0 {
		endpoint += "?" + url.Values{"length": {strconv.Itoa(length)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var response api.GenerateResponse
	if err := c.do(req, &response); err != nil {
		return "", err
	}
	return response.String, nil
}

func (c *ProviderClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s returned non-200 response: %d", req.URL.Path, resp.StatusCode)
		}
		return fmt.Errorf("%s returned error %d: %s", req.URL.Path, resp.StatusCode, string(bytes.TrimSpace(bodyBytes)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
