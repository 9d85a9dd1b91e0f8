package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStreamText_DelegatesToStreamer(t *testing.T) {
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, nil)
	h.streamer = &mockStreamer{streamFn: func(_ context.Context, w http.ResponseWriter) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Lorem"))
		return context.Canceled
	}}

	rec := httptest.NewRecorder()
	h.StreamText(rec, httptest.NewRequest(http.MethodGet, "/api/stream/text", nil))

	if rec.Body.String() != "Lorem" {
		t.Errorf("тело ответа: %q", rec.Body.String())
	}
}

func TestStreamText_ErrorAfterStartIsLogged(t *testing.T) {
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, nil)
	h.streamer = &mockStreamer{streamFn: func(_ context.Context, w http.ResponseWriter) error {
		w.WriteHeader(http.StatusOK)
		return errors.New("broken pipe")
	}}

	rec := httptest.NewRecorder()
	h.StreamText(rec, httptest.NewRequest(http.MethodGet, "/api/stream/text", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("статус: %d", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, nil)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope?x=1", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус: ожидался 404, получен %d", rec.Code)
	}
	want := `{"success":false,"error":{"code":"NOT_FOUND","message":"Not found: /nope?x=1"}}` + "\n"
	if rec.Body.String() != want {
		t.Errorf("тело ответа: %q", rec.Body.String())
	}
}
