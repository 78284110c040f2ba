package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/markket/storefront-api/internal/models"
)

// RespondJSON writes response as a JSON document. A zero status code defaults to 200.
func RespondJSON(rw http.ResponseWriter, response models.Response) {
	body, err := json.Marshal(response.Body)
	if err != nil {
		body, _ = json.Marshal(models.ErrorBody{Error: "failed to encode response"})
		response.StatusCode = http.StatusInternalServerError
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.Header().Set("Content-Type", "application/json")
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write(body)
}

// RespondError writes the {"error": message} envelope with the given status code.
func RespondError(rw http.ResponseWriter, statusCode int, message string) {
	RespondJSON(rw, models.Response{StatusCode: statusCode, Body: models.ErrorBody{Error: message}})
}

// RespondRaw relays an already encoded JSON body unchanged.
func RespondRaw(rw http.ResponseWriter, statusCode int, body []byte) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	if len(body) > 0 {
		_, _ = rw.Write(body)
	}
}
