// Package client talks to a CanvasBoard server and holds the interactive
// board state a desktop front end renders from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"CanvasBoard/internal/state"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// SessionInfo answers Init.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Ack answers every mutation.
type Ack struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Revision uint64 `json:"revision"`
	Appended bool   `json:"appended"`
}

// Upload answers a stored image upload.
type Upload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL, e.g. "http://host:8080".
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) canvasPath(id string, parts ...string) string {
	return path.Join(append([]string{"/api/canvas", url.PathEscape(id)}, parts...)...)
}

func (c *Client) Init(ctx context.Context, width, height int) (SessionInfo, error) {
	var out SessionInfo
	body := map[string]int{"width": width, "height": height}
	err := c.doJSON(ctx, http.MethodPost, "/api/canvas/init", body, &out)
	return out, err
}

// Session fetches the authoritative element log.
func (c *Client) Session(ctx context.Context, id string) (state.View, error) {
	var out state.View
	err := c.doJSON(ctx, http.MethodGet, c.canvasPath(id), nil, &out)
	return out, err
}

func (c *Client) Stroke(ctx context.Context, id string, req state.StrokeRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "stroke"), req)
}

func (c *Client) Rectangle(ctx context.Context, id string, req state.RectangleRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "rectangle"), req)
}

func (c *Client) Circle(ctx context.Context, id string, req state.CircleRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "circle"), req)
}

func (c *Client) Text(ctx context.Context, id string, req state.TextRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "text"), req)
}

func (c *Client) Image(ctx context.Context, id string, req state.ImageRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "image"), req)
}

func (c *Client) Draw(ctx context.Context, id string, req state.DrawRequest) (Ack, error) {
	return c.mutate(ctx, http.MethodPost, c.canvasPath(id, "draw"), req)
}

func (c *Client) Clear(ctx context.Context, id string) (Ack, error) {
	return c.mutate(ctx, http.MethodDelete, c.canvasPath(id, "clear"), nil)
}

// ExportPDF streams the session's PDF into w.
func (c *Client) ExportPDF(ctx context.Context, id string, w io.Writer) error {
	return c.download(ctx, c.canvasPath(id, "export", "pdf"), w)
}

// Preview streams the server raster as PNG into w.
func (c *Client) Preview(ctx context.Context, id string, w io.Writer) error {
	return c.download(ctx, c.canvasPath(id, "preview"), w)
}

// Upload stores an image on the server and returns its reference.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return Upload{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return Upload{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return Upload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/upload", &buf)
	if err != nil {
		return Upload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out Upload
	err = c.do(req, &out)
	return out, err
}

func (c *Client) mutate(ctx context.Context, method, p string, body any) (Ack, error) {
	var out Ack
	err := c.doJSON(ctx, method, p, body, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, p string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+p, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, p string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+p, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", p, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
