package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var envelope ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestWriteJSONStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONStatus(rec, http.StatusCreated, map[string]string{"message": "created"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "created" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "invalid credentials uses canned message",
			err:        pkgerrors.New(pkgerrors.CodeInvalidCreds, "secret internal detail"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
			wantMsg:    "incorrect username/email or password",
		},
		{
			name:       "duplicate email passes message through",
			err:        pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email already registered"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "DUPLICATE_EMAIL",
			wantMsg:    "email already registered",
		},
		{
			name:       "forbidden",
			err:        pkgerrors.New(pkgerrors.CodeForbidden, "not enough permissions"),
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantMsg:    "not enough permissions",
		},
		{
			name:       "untyped error collapses to internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
		{
			name:       "nil error still answers",
			err:        nil,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tt.wantStatus)
			}
			envelope := decodeError(t, rec)
			if envelope.Error.Code != tt.wantCode {
				t.Fatalf("code %q, want %q", envelope.Error.Code, tt.wantCode)
			}
			if envelope.Error.Message != tt.wantMsg {
				t.Fatalf("message %q, want %q", envelope.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestWriteErrorIncludesDetailsWhenAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"email": "must be a valid email"})
	WriteError(context.Background(), nil, rec, err)

	envelope := decodeError(t, rec)
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", envelope.Error.Details)
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestWriteErrorSuppressesDetailsWhenNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInvalidCreds, "nope").
		WithDetails(map[string]string{"identifier": "ada"})
	WriteError(context.Background(), nil, rec, err)

	envelope := decodeError(t, rec)
	if envelope.Error.Details != nil {
		t.Fatalf("details must not leak for credential errors, got %v", envelope.Error.Details)
	}
}
