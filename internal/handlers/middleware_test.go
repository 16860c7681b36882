package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"balagh/internal/metrics"
)

type statusCounter struct {
	metrics.Nop
	codes []int
}

func (s *statusCounter) RecordHTTPStatus(code int) {
	s.codes = append(s.codes, code)
}

func TestLoggingRecordsStatus(t *testing.T) {
	rec := &statusCounter{}
	m := NewMiddleware(nil, nil, nil, nil, rec, false)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{"implicit ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("hi")) }, http.StatusOK},
		{"explicit status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }, http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.codes = nil
			m.Logging(tt.handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			if len(rec.codes) != 1 || rec.codes[0] != tt.want {
				t.Errorf("recorded %v, want [%d]", rec.codes, tt.want)
			}
		})
	}
}

func TestRequireAuthWithoutDevice(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, nil, nil, false)
	called := false
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/kids/progress", nil))

	if called {
		t.Error("handler ran without device state")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
}
