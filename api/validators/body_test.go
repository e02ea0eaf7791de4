package validators

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
)

type registerBody struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=7"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(
		`{"email":"ada@x.com","username":"ada","password":"pw12345"}`))

	var body registerBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Email != "ada@x.com" {
		t.Fatalf("unexpected email %q", body.Email)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":`))

	var body registerBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(
		`{"email":"ada@x.com","username":"ada","password":"pw12345","admin":true}`))

	var body registerBody
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("expected unknown field rejection")
	}
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(
		`{"email":"not-an-email","username":"ab","password":"short"}`))

	var body registerBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if !strings.HasPrefix(details["username"], "must be at least") {
		t.Fatalf("unexpected username detail %q", details["username"])
	}
}

type loginForm struct {
	Identifier string `form:"username" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

func newFormRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDecodeFormValid(t *testing.T) {
	req := newFormRequest(url.Values{"username": {"ada"}, "password": {"pw12345"}})

	var form loginForm
	if err := DecodeForm(req, &form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Identifier != "ada" || form.Password != "pw12345" {
		t.Fatalf("unexpected form %+v", form)
	}
}

func TestDecodeFormMissingFields(t *testing.T) {
	req := newFormRequest(url.Values{"username": {"ada"}})

	var form loginForm
	err := DecodeForm(req, &form)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestDecodeFormRequiresStructPointer(t *testing.T) {
	req := newFormRequest(url.Values{"username": {"ada"}})

	var notAStruct string
	if err := DecodeForm(req, &notAStruct); err == nil {
		t.Fatal("expected non-struct destination rejection")
	}
}
