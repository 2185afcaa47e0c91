package meshy

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

const (
	previewModel = "nano-banana-pro"
	modelVersion = "latest"

	// Artifacts can be large GLB files; the limit only guards against runaway bodies.
	maxDownloadBytes = 512 << 20
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type imageToImageRequest struct {
	AIModel            string   `json:"ai_model"`
	Prompt             string   `json:"prompt"`
	ReferenceImageURLs []string `json:"reference_image_urls"`
	GenerateMultiView  bool     `json:"generate_multi_view"`
}

type imageTo3DRequest struct {
	ImageURL      string `json:"image_url"`
	AIModel       string `json:"ai_model"`
	ShouldTexture bool   `json:"should_texture"`
	ShouldRemesh  bool   `json:"should_remesh"`
}

type createTaskResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

type taskResponse struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Progress  *int     `json:"progress"`
	Message   string   `json:"message"`
	ImageURLs []string `json:"image_urls"`
	ModelURLs struct {
		GLB string `json:"glb"`
		OBJ string `json:"obj"`
	} `json:"model_urls"`
	TaskError struct {
		Message string `json:"message"`
	} `json:"task_error"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SubmitPreview starts an image-to-image task that turns the reference photo
// into a clay-style bust render.
func (c *Client) SubmitPreview(ctx context.Context, req PreviewRequest) (string, error) {
	if req.ReferenceImageURL == "" {
		return "", fmt.Errorf("reference image url is required")
	}
	return c.createTask(ctx, "/openapi/v1/image-to-image", imageToImageRequest{
		AIModel:            previewModel,
		Prompt:             req.Prompt,
		ReferenceImageURLs: []string{req.ReferenceImageURL},
		GenerateMultiView:  false,
	})
}

func (c *Client) PollPreview(ctx context.Context, taskID string) (*Task, error) {
	return c.getTask(ctx, "/openapi/v1/image-to-image/", taskID)
}

// SubmitModel starts an image-to-3d task with texturing and remeshing enabled.
func (c *Client) SubmitModel(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image url is required")
	}
	return c.createTask(ctx, "/openapi/v1/image-to-3d", imageTo3DRequest{
		ImageURL:      imageURL,
		AIModel:       modelVersion,
		ShouldTexture: true,
		ShouldRemesh:  true,
	})
}

func (c *Client) PollModel(ctx context.Context, taskID string) (*Task, error) {
	return c.getTask(ctx, "/openapi/v1/image-to-3d/", taskID)
}

// Download fetches a result artifact. Result URLs are pre-signed by the
// provider, so no credentials are sent.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download artifact: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

func (c *Client) createTask(ctx context.Context, path string, payload any) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var result createTaskResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.Result == "" {
		return "", fmt.Errorf("task id is empty in response, body: %s", string(body))
	}

	return result.Result, nil
}

func (c *Client) getTask(ctx context.Context, path, taskID string) (*Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var raw taskResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return raw.toTask(taskID), nil
}

func (r *taskResponse) toTask(taskID string) *Task {
	task := &Task{
		ID:        taskID,
		Status:    ParseTaskStatus(r.Status),
		Message:   r.Message,
		ImageURLs: r.ImageURLs,
		ModelURLs: ModelURLs{GLB: r.ModelURLs.GLB, OBJ: r.ModelURLs.OBJ},
	}
	if r.ID != "" {
		task.ID = r.ID
	}
	if r.Progress != nil {
		task.Progress = clampProgress(*r.Progress)
		task.HasProgress = true
	}
	if task.Status == TaskFailed {
		task.ErrorMessage = r.TaskError.Message
		if task.ErrorMessage == "" {
			task.ErrorMessage = r.Message
		}
	}
	return task
}

// errorMessage pulls a readable message out of an error body, falling back to
// the raw body.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
