package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerWithLevel(t *testing.T) {
	logger := zap.NewNop()
	middleware := LoggerWithLevel(logger)

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
	}{
		{
			name: "success response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "client error response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "server error response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			middleware(tt.handler).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %v, got %v", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestResponseWriterDoubleWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := wrapResponseWriter(w)

	wrapped.WriteHeader(http.StatusCreated)
	wrapped.WriteHeader(http.StatusInternalServerError)

	if wrapped.Status() != http.StatusCreated {
		t.Errorf("expected status %v, got %v", http.StatusCreated, wrapped.Status())
	}
	if w.Code != http.StatusCreated {
		t.Errorf("expected recorded status %v, got %v", http.StatusCreated, w.Code)
	}
}
