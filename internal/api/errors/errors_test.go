package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError_Format(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "Not found: /nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус: ожидался 404, получен %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success: ожидался false, получен %v", body["success"])
	}
	e := body["error"].(map[string]any)
	if e["code"] != CodeNotFound || e["message"] != "Not found: /nope" {
		t.Errorf("error: %v", e)
	}
	if _, ok := e["details"]; ok {
		t.Error("details не должен выводиться без ошибок полей")
	}
}

func TestValidationError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, []FieldError{{Field: "page", Message: "must be >= 1"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус: ожидался 400, получен %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string       `json:"code"`
			Message string       `json:"message"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body.Error.Code != CodeValidationError || body.Error.Message != "Validation error" {
		t.Errorf("error: %+v", body.Error)
	}
	if len(body.Error.Details) != 1 || body.Error.Details[0].Field != "page" {
		t.Errorf("details: %+v", body.Error.Details)
	}
}
