package tensor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.RetryBackoff = 10 * time.Millisecond
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestClient_Predict(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        bool
		wantErrContain string
		validateResp   func(*testing.T, *PredictResponse)
	}{
		{
			name:           "successful response",
			serverResponse: PredictResponse{Predictions: [][]float32{make([]float32, 512)}},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *PredictResponse) {
				require.NotNil(t, resp)
				require.Len(t, resp.Predictions, 1)
				assert.Len(t, resp.Predictions[0], 512)
			},
		},
		{
			name:           "empty predictions",
			serverResponse: PredictResponse{},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *PredictResponse) {
				require.NotNil(t, resp)
				assert.Empty(t, resp.Predictions)
			},
		},
		{
			name:           "server error 500",
			serverResponse: map[string]string{"error": "internal server error"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        true,
			wantErrContain: "status 500",
		},
		{
			name:           "bad request 400",
			serverResponse: map[string]string{"error": "input shape mismatch"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        true,
			wantErrContain: "status 400",
		},
		{
			name:           "invalid json response",
			serverResponse: "not a valid json",
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrContain: "invalid response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/models/facenet:predict", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req PredictRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "serving_default", req.SignatureName)
				assert.Len(t, req.Instances, 1)

				w.WriteHeader(tt.serverStatus)
				if str, ok := tt.serverResponse.(string); ok {
					_, _ = w.Write([]byte(str))
				} else {
					_ = json.NewEncoder(w).Encode(tt.serverResponse)
				}
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			resp, err := client.Predict(context.Background(), PredictRequest{
				Instances: [][][][]float32{{{{0, 0, 0}}}},
			})

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrContain != "" {
					assert.Contains(t, err.Error(), tt.wantErrContain)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateResp != nil {
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_RetryOnFailure(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(PredictResponse{Predictions: [][]float32{{1}}})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 3

	resp, err := NewClient(cfg).Predict(context.Background(), PredictRequest{})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "expected exactly 3 attempts")
}

func TestClient_RetryExhaustion(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 2

	_, err := NewClient(cfg).Predict(context.Background(), PredictRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelServerUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "expected initial attempt + 2 retries")
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 3

	_, err := NewClient(cfg).Predict(context.Background(), PredictRequest{})

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).Predict(context.Background(), PredictRequest{})

	assert.ErrorIs(t, err, ErrModelServerUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(PredictResponse{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(testConfig(server.URL)).Predict(ctx, PredictRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ModelStatus(t *testing.T) {
	tests := []struct {
		name   string
		status ModelStatusResponse
		want   bool
	}{
		{
			name:   "available",
			status: ModelStatusResponse{ModelVersionStatus: []ModelVersionStatus{{Version: "1", State: "AVAILABLE"}}},
			want:   true,
		},
		{
			name:   "loading",
			status: ModelStatusResponse{ModelVersionStatus: []ModelVersionStatus{{Version: "1", State: "LOADING"}}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/models/facenet", r.URL.Path)
				_ = json.NewEncoder(w).Encode(tt.status)
			}))
			defer server.Close()

			got, err := NewClient(testConfig(server.URL)).ModelStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	limit := time.Second

	assert.Equal(t, base, calculateBackoff(base, limit, 1))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(base, limit, 2))
	assert.Equal(t, 400*time.Millisecond, calculateBackoff(base, limit, 3))
	assert.Equal(t, limit, calculateBackoff(base, limit, 10))
	assert.Equal(t, time.Second, calculateBackoff(0, 30*time.Second, 1))
}
