package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daangn/permalink"
	"github.com/go-playground/validator/v10"
)

// KindValidation marks malformed requests, as opposed to malformed permalinks.
const KindValidation = "validation"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response, mapping domain errors to HTTP status codes.
func Error(w http.ResponseWriter, err error) {
	status, body := errorResponse(err)
	JSON(w, status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: KindValidation}
	}

	kind := permalink.ErrorKind(err)
	switch kind {
	case permalink.KindInvalidURL:
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: kind}
	case permalink.KindInvalidPermalink, permalink.KindUnknownCountry:
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: kind}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: permalink.KindInternal}
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Kind: KindValidation})
}
