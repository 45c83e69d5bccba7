package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/auth"
)

type fakeStore struct {
	saved      *Analysis
	saveErr    error
	history    []Analysis
	historyErr error

	gotUserID int64
	gotSave   SaveRequest
}

func (f *fakeStore) Save(ctx context.Context, userID int64, req SaveRequest) (*Analysis, error) {
	f.gotUserID = userID
	f.gotSave = req
	return f.saved, f.saveErr
}

func (f *fakeStore) History(ctx context.Context, userID int64) ([]Analysis, error) {
	f.gotUserID = userID
	return f.history, f.historyErr
}

type fakeDetector struct {
	result *DetectionResult
	err    error
}

func (f *fakeDetector) Detect(ctx context.Context, filename string, image io.Reader) (*DetectionResult, error) {
	return f.result, f.err
}

func authedRequest(t *testing.T, method, target string, body io.Reader, userID int64) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestHandleSave(t *testing.T) {
	t.Parallel()

	count := 3
	rec := "Use a gentle cleanser"
	saved := &Analysis{
		ID: 11, UserID: 7, ImageURL: "/uploads/a.jpg", PimpleCount: count,
		Recommendations: &rec, CreatedAt: time.Now(),
	}

	tests := []struct {
		name         string
		body         string
		authed       bool
		store        *fakeStore
		expectedCode int
	}{
		{
			name:         "success",
			body:         `{"imageUrl":"/uploads/a.jpg","pimpleCount":3,"recommendations":"Use a gentle cleanser"}`,
			authed:       true,
			store:        &fakeStore{saved: saved},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "no identity in context",
			body:         `{"imageUrl":"/uploads/a.jpg","pimpleCount":3}`,
			authed:       false,
			store:        &fakeStore{},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "missing imageUrl",
			body:         `{"pimpleCount":3}`,
			authed:       true,
			store:        &fakeStore{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing pimpleCount",
			body:         `{"imageUrl":"/uploads/a.jpg"}`,
			authed:       true,
			store:        &fakeStore{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "zero pimpleCount is valid",
			body:         `{"imageUrl":"/uploads/a.jpg","pimpleCount":0}`,
			authed:       true,
			store:        &fakeStore{saved: &Analysis{ID: 12, UserID: 7, ImageURL: "/uploads/a.jpg"}},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "store failure is a generic 500",
			body:         `{"imageUrl":"/uploads/a.jpg","pimpleCount":3}`,
			authed:       true,
			store:        &fakeStore{saveErr: apperror.NewDatabaseError("failed to save analysis", nil)},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(tt.store, &fakeDetector{}, t.TempDir(), zap.NewNop())

			var req *http.Request
			if tt.authed {
				req = authedRequest(t, http.MethodPost, "/api/analysis/save", bytes.NewBufferString(tt.body), 7)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/analysis/save", bytes.NewBufferString(tt.body))
			}
			w := httptest.NewRecorder()

			h.HandleSave().ServeHTTP(w, req)
			require.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode != http.StatusCreated {
				return
			}

			var resp SaveResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			require.NotNil(t, resp.Analysis)
			// Ownership comes from the session, not the body.
			assert.Equal(t, int64(7), tt.store.gotUserID)
		})
	}
}

func TestHandleHistory(t *testing.T) {
	t.Parallel()

	rec := "rest"
	store := &fakeStore{history: []Analysis{
		{ID: 2, UserID: 7, ImageURL: "/uploads/b.jpg", PimpleCount: 1, CreatedAt: time.Now()},
		{ID: 1, UserID: 7, ImageURL: "/uploads/a.jpg", PimpleCount: 4, Recommendations: &rec, CreatedAt: time.Now()},
	}}
	h := NewHandlers(store, &fakeDetector{}, t.TempDir(), zap.NewNop())

	req := authedRequest(t, http.MethodGet, "/api/history", nil, 7)
	w := httptest.NewRecorder()

	h.HandleHistory().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Analyses, 2)
	assert.Equal(t, int64(2), resp.Analyses[0].ID)
	assert.Equal(t, int64(7), store.gotUserID)
}

func TestHandleHistory_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := NewHandlers(&fakeStore{}, &fakeDetector{}, t.TempDir(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	h.HandleHistory().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestHandleDetect(t *testing.T) {
	t.Parallel()

	detector := &fakeDetector{result: &DetectionResult{
		Status:      "success",
		DetailAcne:  map[string]int{"acne": 2, "blackhead": 1},
		ImageResult: "data:image/jpeg;base64,xxx",
	}}
	h := NewHandlers(&fakeStore{}, detector, t.TempDir(), zap.NewNop())

	body, contentType := multipartImage(t, "face.jpg", []byte("fake-jpeg-bytes"))
	req := authedRequest(t, http.MethodPost, "/api/analysis/detect", body, 7)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.HandleDetect().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.PimpleCount)
	assert.Contains(t, resp.ImageURL, "/uploads/")
}

func TestHandleDetect_UpstreamFailure(t *testing.T) {
	t.Parallel()

	detector := &fakeDetector{err: apperror.NewExternalServiceError("Analysis service unavailable", nil)}
	h := NewHandlers(&fakeStore{}, detector, t.TempDir(), zap.NewNop())

	body, contentType := multipartImage(t, "face.jpg", []byte("fake-jpeg-bytes"))
	req := authedRequest(t, http.MethodPost, "/api/analysis/detect", body, 7)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.HandleDetect().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleDetect_MissingImage(t *testing.T) {
	t.Parallel()

	h := NewHandlers(&fakeStore{}, &fakeDetector{}, t.TempDir(), zap.NewNop())

	body, contentType := multipartImage(t, "", nil)
	req := authedRequest(t, http.MethodPost, "/api/analysis/detect", body, 7)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.HandleDetect().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// multipartImage builds a multipart body with an optional "image" part.
// An empty filename produces a form with no file at all.
func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
