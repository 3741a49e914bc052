// Package testutil provides testing utilities and helpers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// AssertStatusCode checks if the response has the expected status code.
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Fatalf("expected status %d, got %d (body %s)", expected, rr.Code, rr.Body.String())
	}
}

// AssertErrorResponse checks the status code and the {"error": "..."} body
// every API error is written with.
func AssertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatusCode(t, rr, status)
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected content type application/json, got %q", ct)
	}

	var response struct {
		Error string `json:"error"`
	}
	DecodeJSON(t, rr, &response)
	if response.Error != message {
		t.Fatalf("expected error %q, got %q", message, response.Error)
	}
}

// DecodeJSON unmarshals the recorded body into dst.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
}

// NewJSONRequest creates a request with a raw JSON body.
func NewJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewJSONRequestFrom marshals data and creates a request with it as the body.
func NewJSONRequestFrom(t *testing.T, method, path string, data interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return NewJSONRequest(method, path, string(body))
}

// RandomEmail generates a unique, already normalized email address.
func RandomEmail() string {
	return uuid.New().String()[:8] + "@example.com"
}
