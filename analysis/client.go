package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/config"
)

// DetectionResult is the AI service's response to a detection call. The
// response is displayed and stored verbatim; nothing here interprets it.
type DetectionResult struct {
	Status     string         `json:"status"`
	DetailAcne map[string]int `json:"detail_acne"`
	// ImageResult is the annotated image as a base64 data URL.
	ImageResult string `json:"image_result"`
	Message     string `json:"message,omitempty"`
}

// TotalCount sums the per-class detection counts.
func (r *DetectionResult) TotalCount() int {
	total := 0
	for _, n := range r.DetailAcne {
		total += n
	}
	return total
}

// Detector is the client surface the handlers need; tests substitute a fake.
type Detector interface {
	Detect(ctx context.Context, filename string, image io.Reader) (*DetectionResult, error)
}

// DetectorClient calls the external AI detection service. It has its own
// timeout and never holds a database connection while waiting: the upstream
// call is independently failable.
type DetectorClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewDetectorClient creates a DetectorClient from analysis configuration.
func NewDetectorClient(cfg *config.AnalysisConfig, logger *zap.Logger) *DetectorClient {
	return &DetectorClient{
		baseURL: cfg.ServiceURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Detect uploads an image to the AI service and returns the detection
// result. Any transport failure, timeout or non-2xx status maps to an
// ExternalServiceError with a generic client-facing message.
func (c *DetectorClient) Detect(ctx context.Context, filename string, image io.Reader) (*DetectionResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, apperror.NewInternalError("failed to build detection request", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, apperror.NewInternalError("failed to build detection request", err)
	}
	if err := writer.Close(); err != nil {
		return nil, apperror.NewInternalError("failed to build detection request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", &body)
	if err != nil {
		return nil, apperror.NewInternalError("failed to build detection request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("detection service call failed", zap.Error(err))
		return nil, apperror.NewExternalServiceError("Analysis service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("detection service returned error status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, apperror.NewExternalServiceError("Analysis service unavailable",
			fmt.Errorf("detection service returned status %d", resp.StatusCode))
	}

	var result DetectionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperror.NewExternalServiceError("Analysis service returned an invalid response", err)
	}

	c.logger.Debug("detection completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("detections", result.TotalCount()),
	)

	return &result, nil
}
