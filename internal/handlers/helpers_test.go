package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/HammerMeetNail/readshelf/internal/testutil"
)

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	testutil.AssertErrorResponse(t, rr, status, message)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	testutil.DecodeJSON(t, rr, dst)
}
