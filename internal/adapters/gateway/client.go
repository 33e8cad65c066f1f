package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// Capability names as routed by the agents gateway.
const (
	CapabilityQuestion = "qa"
	CapabilityDisease  = "disease"
	CapabilityMarket   = "market"
	CapabilitySchemes  = "schemes"
)

// RunRequest is the body of POST {base}/run/{capability}.
type RunRequest struct {
	Language    string `json:"language"`
	Question    string `json:"question,omitempty"`
	CropName    string `json:"crop_name,omitempty"`
	SchemeQuery string `json:"scheme_query,omitempty"`
	ImageBytes  []byte `json:"image_bytes,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

type RunResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Client is a domain.Advisor backed by a remote agents gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a gateway client. A nil httpClient gets a client without
// a timeout; callers bound the request through ctx if they need to.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) AnswerQuestion(ctx context.Context, question string, lang domain.Language) (string, error) {
	return c.run(ctx, CapabilityQuestion, RunRequest{Language: string(lang), Question: question})
}

func (c *Client) AnalyzeDisease(ctx context.Context, image domain.Image, question string, lang domain.Language) (string, error) {
	return c.run(ctx, CapabilityDisease, RunRequest{
		Language:   string(lang),
		Question:   question,
		ImageBytes: image.Data,
		MimeType:   image.MimeType,
	})
}

func (c *Client) AnalyzeMarket(ctx context.Context, cropName string, lang domain.Language) (string, error) {
	return c.run(ctx, CapabilityMarket, RunRequest{Language: string(lang), CropName: cropName})
}

func (c *Client) LookupSchemes(ctx context.Context, schemeQuery string, lang domain.Language) (string, error) {
	return c.run(ctx, CapabilitySchemes, RunRequest{Language: string(lang), SchemeQuery: schemeQuery})
}

func (c *Client) run(ctx context.Context, capability string, req RunRequest) (string, error) {
	url := c.baseURL + "/run/" + capability

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "could not encode gateway request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "could not build gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(err, "agents gateway %s unavailable", capability)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "could not read gateway response")
	}

	var out RunResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", errors.Errorf("agents gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", errors.Wrap(err, "could not decode gateway response")
	}

	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("agents gateway returned %d", resp.StatusCode)
	}
	if out.Content == "" {
		return "", errors.Errorf("agents gateway returned no content for %s", capability)
	}
	return out.Content, nil
}

var _ domain.Advisor = (*Client)(nil)
