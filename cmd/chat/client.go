package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type documentType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type startResult struct {
	Session struct {
		ID string `json:"id"`
	} `json:"session"`
	Greeting string `json:"greeting"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type turnResult struct {
	Mode     string `json:"mode"`
	Action   string `json:"action"`
	Message  string `json:"message"`
	Complete bool   `json:"complete"`
	Fallback bool   `json:"fallback"`
	Artifact *struct {
		ID string `json:"id"`
	} `json:"artifact"`
}

type summaryResult struct {
	Summary  string `json:"summary"`
	Complete bool   `json:"complete"`
}

type artifactView struct {
	ID          string `json:"id"`
	DownloadURL string `json:"download_url"`
}

// apiError is the standardized error envelope of the API.
type apiError struct {
	Status int
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ValidationErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"validation_errors"`
}

func (e *apiError) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s: %s", e.Status, e.Error.Code, e.Error.Message)
	for _, v := range e.ValidationErrors {
		fmt.Fprintf(&b, "\n  %s: %s", v.Field, v.Message)
	}
	return b.String()
}

type requestError struct{ api *apiError }

func (e requestError) Error() string { return e.api.String() }

// client talks to the docfill HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		// chat turns wait on the language model
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *client) documentTypes(ctx context.Context) ([]documentType, error) {
	var out struct {
		Data []documentType `json:"data"`
	}
	return out.Data, c.do(ctx, http.MethodGet, "/document-types", nil, &out)
}

func (c *client) start(ctx context.Context, code string) (*startResult, error) {
	var out startResult
	return &out, c.do(ctx, http.MethodPost, "/sessions", map[string]string{"document_type": code}, &out)
}

func (c *client) chat(ctx context.Context, sessionID, message string, history []chatMessage) (*turnResult, error) {
	var out turnResult
	body := map[string]any{"message": message, "history": history}
	return &out, c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/chat", body, &out)
}

// ask sends a consultation question; the session's answers are not touched.
func (c *client) ask(ctx context.Context, sessionID, question string, history []chatMessage) (*turnResult, error) {
	var out turnResult
	body := map[string]any{"message": question, "history": history}
	return &out, c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/ask", body, &out)
}

func (c *client) summary(ctx context.Context, sessionID string) (*summaryResult, error) {
	var out summaryResult
	return &out, c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/summary", nil, &out)
}

func (c *client) artifact(ctx context.Context, id string) (*artifactView, error) {
	var out artifactView
	return &out, c.do(ctx, http.MethodGet, "/artifacts/"+id, nil, &out)
}

// download fetches a presigned artifact URL into w.
func (c *client) download(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: status %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return requestError{api: apiErr}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
