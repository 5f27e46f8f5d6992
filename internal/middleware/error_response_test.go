package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/focustrack/internal/model"
)

func TestWriteErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["message"] != "unauthorized" {
		t.Errorf("message = %q, want %q", body["message"], "unauthorized")
	}
}

func TestWriteValidationError_IssueListAsMessage(t *testing.T) {
	w := httptest.NewRecorder()

	WriteValidationError(w, &model.ValidationError{Issues: []model.FieldIssue{
		{Field: "timeFrom", Message: "timeFrom is a required field"},
		{Field: "timeTo", Message: "timeTo is a required field"},
	}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	var body struct {
		Message []model.FieldIssue `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body.Message) != 2 {
		t.Fatalf("len(message) = %d, want 2", len(body.Message))
	}
	if body.Message[0].Field != "timeFrom" {
		t.Errorf("message[0].field = %q, want %q", body.Message[0].Field, "timeFrom")
	}
}

func TestWriteUpstreamError_PassesRawPayload(t *testing.T) {
	w := httptest.NewRecorder()

	payload := []byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`)
	WriteUpstreamError(w, &model.UpstreamError{StatusCode: http.StatusOK, Payload: payload})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := w.Body.String(); got != string(payload) {
		t.Errorf("body = %q, want raw payload %q", got, payload)
	}
}

func TestWriteInternalServerError_GenericMessage(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["message"] != GenericErrorMessage {
		t.Errorf("message = %q, want %q", body["message"], GenericErrorMessage)
	}
}
