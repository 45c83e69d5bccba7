package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/config"
)

func newTestClient(serviceURL string, timeout time.Duration) *DetectorClient {
	return NewDetectorClient(&config.AnalysisConfig{
		ServiceURL: serviceURL,
		Timeout:    timeout,
	}, zap.NewNop())
}

func TestDetectorClient_Detect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/detect", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"detail_acne": {"acne": 2, "blackhead": 1},
			"image_result": "data:image/jpeg;base64,xxx"
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5*time.Second)
	result, err := client.Detect(context.Background(), "face.jpg", strings.NewReader("fake-jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 3, result.TotalCount())
	assert.Equal(t, "data:image/jpeg;base64,xxx", result.ImageResult)
}

func TestDetectorClient_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5*time.Second)
	_, err := client.Detect(context.Background(), "face.jpg", strings.NewReader("fake-jpeg"))

	require.Error(t, err)
	assert.True(t, apperror.IsExternalServiceError(err))
}

func TestDetectorClient_Unreachable(t *testing.T) {
	t.Parallel()

	// Nothing listens here.
	client := newTestClient("http://127.0.0.1:1", time.Second)
	_, err := client.Detect(context.Background(), "face.jpg", strings.NewReader("fake-jpeg"))

	require.Error(t, err)
	assert.True(t, apperror.IsExternalServiceError(err))
}

func TestDetectorClient_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Detect(ctx, "face.jpg", strings.NewReader("fake-jpeg"))
	require.Error(t, err)
	assert.True(t, apperror.IsExternalServiceError(err))
}

func TestDetectionResult_TotalCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		detail map[string]int
		want   int
	}{
		{name: "nil map", detail: nil, want: 0},
		{name: "empty map", detail: map[string]int{}, want: 0},
		{name: "single class", detail: map[string]int{"acne": 4}, want: 4},
		{name: "multiple classes", detail: map[string]int{"acne": 4, "blackhead": 2, "whitehead": 1}, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &DetectionResult{DetailAcne: tt.detail}
			assert.Equal(t, tt.want, r.TotalCount())
		})
	}
}
