// Package mediastore talks to the external blob-storage provider that holds
// submission videos. The service never streams video itself; it only issues
// upload tickets and releases blobs.
package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the provider does not know the object.
var ErrNotFound = errors.New("mediastore: not found")

// UploadTicket grants a short-lived signed URL for one video upload.
type UploadTicket struct {
	UploadURL string
	PublicURL string
	ExpiresAt time.Time
}

// Client defines the contract for the blob-storage provider.
type Client interface {
	IssueUploadURL(ctx context.Context, storagePath, contentType string) (*UploadTicket, error)
	Delete(ctx context.Context, storagePath string) error
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewHTTPClient constructs a new HTTP-backed media store client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.SugaredLogger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse media store url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

type uploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

type uploadResponse struct {
	UploadURL string     `json:"uploadUrl"`
	PublicURL string     `json:"publicUrl"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// IssueUploadURL requests a signed upload URL for the given storage path.
func (c *HTTPClient) IssueUploadURL(ctx context.Context, storagePath, contentType string) (*UploadTicket, error) {
	payload, err := json.Marshal(uploadRequest{Path: storagePath, ContentType: contentType})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "/v1/uploads"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var body uploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode upload response: %w", err)
		}
		return convertToTicket(body), nil
	default:
		c.logger.Warnw("mediastore: unexpected status for upload request",
			"status", resp.StatusCode, "path", storagePath)
		return nil, fmt.Errorf("mediastore: upstream returned %d", resp.StatusCode)
	}
}

// Delete releases a stored object. Deleting an unknown object returns
// ErrNotFound.
func (c *HTTPClient) Delete(ctx context.Context, storagePath string) error {
	rel := &url.URL{Path: "/v1/objects"}
	q := rel.Query()
	q.Set("path", storagePath)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		c.logger.Warnw("mediastore: unexpected status for delete",
			"status", resp.StatusCode, "path", storagePath)
		return fmt.Errorf("mediastore: upstream returned %d", resp.StatusCode)
	}
}

func convertToTicket(body uploadResponse) *UploadTicket {
	expires := time.Now().UTC().Add(15 * time.Minute)
	if body.ExpiresAt != nil {
		expires = body.ExpiresAt.UTC()
	}
	return &UploadTicket{
		UploadURL: body.UploadURL,
		PublicURL: body.PublicURL,
		ExpiresAt: expires,
	}
}
