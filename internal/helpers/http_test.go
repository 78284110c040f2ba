package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/models"
	"github.com/stretchr/testify/assert"
)

type testCase struct {
	Name     string
	Response models.Response
	Expected expectedResponse
}

type expectedResponse struct {
	StatusCode int
	Body       string
	Header     string
}

func TestRespondJSON(t *testing.T) {
	testCases := []testCase{
		{
			Name: "with_body_and_status",
			Response: models.Response{
				StatusCode: http.StatusOK,
				Body:       models.WebhookAck{Received: true},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       `{"received":true}`,
				Header:     "application/json",
			},
		},
		{
			Name: "with_error_body",
			Response: models.Response{
				StatusCode: http.StatusBadRequest,
				Body:       models.ErrorBody{Error: "Missing store"},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusBadRequest,
				Body:       `{"error":"Missing store"}`,
				Header:     "application/json",
			},
		},
		{
			Name: "with_custom_headers",
			Response: models.Response{
				Body:    map[string]string{"status": "ok"},
				Headers: map[string]string{"Content-Type": "application/problem+json"},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       `{"status":"ok"}`,
				Header:     "application/problem+json",
			},
		},
		{
			Name:     "with_empty_response",
			Response: models.Response{},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       `null`,
				Header:     "application/json",
			},
		},
		{
			Name: "with_unencodable_body",
			Response: models.Response{
				StatusCode: http.StatusOK,
				Body:       make(chan int),
			},
			Expected: expectedResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"error":"failed to encode response"}`,
				Header:     "application/json",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rw := httptest.NewRecorder()

			helpers.RespondJSON(rw, tc.Response)

			assert.Equal(t, tc.Expected.StatusCode, rw.Code)
			assert.Equal(t, tc.Expected.Header, rw.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.Expected.Body, rw.Body.String())
		})
	}
}

func TestRespondRaw(t *testing.T) {
	rw := httptest.NewRecorder()
	helpers.RespondRaw(rw, http.StatusCreated, []byte(`{"data":{"id":1}}`))
	assert.Equal(t, http.StatusCreated, rw.Code)
	assert.Equal(t, `{"data":{"id":1}}`, rw.Body.String())

	rw = httptest.NewRecorder()
	helpers.RespondRaw(rw, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rw.Code)
	assert.Empty(t, rw.Body.String())
}
