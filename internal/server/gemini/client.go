// Package gemini implements a minimal client for the Google Generative
// Language API (generateContent). Questions and attachments are sent as
// content parts; binary attachments travel inline as base64.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/accordai/gateway/internal/common"
	"github.com/sethvargo/go-retry"
)

// Part is one element of a generateContent request: either text or an inline
// binary blob, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// TextPart wraps a plain-text prompt.
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart wraps binary content as an inline base64 part.
func BlobPart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []Part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FileInfo is the file object returned by the Gemini File API. Timestamps
// are RFC 3339 strings as the API sends them; SizeBytes is a decimal string
// for the same reason.
type FileInfo struct {
	Name           string `json:"name"`
	URI            string `json:"uri"`
	MimeType       string `json:"mimeType"`
	SizeBytes      string `json:"sizeBytes"`
	SHA256Hash     string `json:"sha256Hash"`
	State          string `json:"state"`
	Source         string `json:"source"`
	CreateTime     string `json:"createTime"`
	UpdateTime     string `json:"updateTime"`
	ExpirationTime string `json:"expirationTime"`
}

type uploadResponse struct {
	File FileInfo `json:"file"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	uploadURL  string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string) *Client {
	// the File API upload endpoint lives under /upload at the API root,
	// beside the versioned generateContent path
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		uploadURL:  strings.TrimSuffix(baseURL, "/v1beta") + "/upload/v1beta/files",
		apiKey:     apiKey,
		model:      model,
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// GenerateContent sends the parts to the model and returns the first
// candidate's concatenated text. Transient upstream failures (network errors
// and 5xx/429 responses) are retried with exponential backoff; any other
// non-200 response fails immediately with common.ErrUpstreamUnavailable.
func (c *Client) GenerateContent(ctx context.Context, parts []Part) (string, error) {

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var answer string

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return retry.RetryableError(fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		var gr generateResponse
		if err := json.Unmarshal(raw, &gr); err != nil {
			return fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
		}
		if len(gr.Candidates) == 0 {
			return fmt.Errorf("%w: empty response", common.ErrUpstreamUnavailable)
		}

		answer = ""
		for _, p := range gr.Candidates[0].Content.Parts {
			answer += p.Text
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return answer, nil
}

// UploadFile pushes an image to the Gemini File API and returns the file
// metadata from the response. The form field name carries the MIME type, as
// the File API expects. Failures map to common.ErrUpstreamUnavailable.
func (c *Client) UploadFile(ctx context.Context, filename, mimeType string, data []byte) (*FileInfo, error) {

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(mimeType, filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	if ur.File.Name == "" {
		return nil, fmt.Errorf("%w: empty file response", common.ErrUpstreamUnavailable)
	}

	return &ur.File, nil
}
