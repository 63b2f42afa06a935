package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func codeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decodeError(t, rec).Error.Code
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decodeError(t, rec).Error.Message
}
