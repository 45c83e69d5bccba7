package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/auth"
)

// maxUploadSize caps a single image upload at 10 MiB.
const maxUploadSize = 10 << 20

// Service is the storage surface the handlers need; tests substitute a fake.
type Service interface {
	Save(ctx context.Context, userID int64, req SaveRequest) (*Analysis, error)
	History(ctx context.Context, userID int64) ([]Analysis, error)
}

// Handlers exposes the analysis endpoints. All of them run behind
// RequireSession and additionally re-check the context identity themselves
// before touching storage.
type Handlers struct {
	service   Service
	detector  Detector
	uploadDir string
	logger    *zap.Logger
}

// NewHandlers creates the analysis handlers.
func NewHandlers(service Service, detector Detector, uploadDir string, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, detector: detector, uploadDir: uploadDir, logger: logger}
}

// HandleSave godoc
// @Summary Save analysis
// @Description Persists an analysis record owned by the authenticated user.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param saveBody body analysis.SaveRequest true "Analysis to save"
// @Success 201 {object} analysis.SaveResponse "Analysis saved"
// @Failure 400 {object} apperror.ErrorResponse "Missing required fields"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/analysis/save [post]
func (h *Handlers) HandleSave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.ImageURL == "" || req.PimpleCount == nil {
			auth.WriteError(w, r, apperror.NewValidationError("Missing required fields", nil))
			return
		}

		record, err := h.service.Save(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, SaveResponse{Success: true, Analysis: record})
	}
}

// HandleHistory godoc
// @Summary Analysis history
// @Description Lists the authenticated user's analyses, newest first.
// @Tags Analysis
// @Produce json
// @Success 200 {object} analysis.HistoryResponse "History"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/history [get]
func (h *Handlers) HandleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		analyses, err := h.service.History(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, HistoryResponse{Analyses: analyses})
	}
}

// DetectResponse combines the stored image location with the AI service's
// verbatim result.
type DetectResponse struct {
	Success     bool           `json:"success"`
	ImageURL    string         `json:"imageUrl"`
	PimpleCount int            `json:"pimpleCount"`
	DetailAcne  map[string]int `json:"detail_acne"`
	ImageResult string         `json:"image_result,omitempty"`
}

// HandleDetect godoc
// @Summary Run detection
// @Description Stores the uploaded image and forwards it to the AI detection service.
// @Tags Analysis
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image to analyze"
// @Success 200 {object} analysis.DetectResponse "Detection result"
// @Failure 400 {object} apperror.ErrorResponse "Missing or oversized image"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 502 {object} apperror.ErrorResponse "Analysis service unavailable"
// @Router /api/analysis/detect [post]
func (h *Handlers) HandleDetect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid multipart form", err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("Image file is required", err))
			return
		}
		defer file.Close()

		imageURL, err := h.storeUpload(file, header.Filename)
		if err != nil {
			h.logger.Error("failed to store upload", zap.Error(err))
			auth.WriteError(w, r, apperror.NewInternalError("failed to store image", err))
			return
		}

		// Re-read the stored file so the upstream call does not depend on
		// the request body still being readable.
		stored, err := os.Open(filepath.Join(h.uploadDir, filepath.Base(imageURL)))
		if err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("failed to read stored image", err))
			return
		}
		defer stored.Close()

		result, err := h.detector.Detect(r.Context(), header.Filename, stored)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, DetectResponse{
			Success:     true,
			ImageURL:    imageURL,
			PimpleCount: result.TotalCount(),
			DetailAcne:  result.DetailAcne,
			ImageResult: result.ImageResult,
		})
	}
}

// storeUpload writes the uploaded image under the upload dir with a uuid
// name and returns its public URL path.
func (h *Handlers) storeUpload(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("/uploads/%s", name), nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
