package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"inmova/bank-import/internal/parsererror"
)

// ErrorDetails locates a rejected upload for the uploader.
type ErrorDetails struct {
	Kind       string `json:"kind"`
	Line       int    `json:"line,omitempty"`
	RecordType string `json:"recordType,omitempty"`
	Path       string `json:"path,omitempty"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

type errorResponse struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// RespondWithJSON writes v with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondWithError writes {"success": false, "error": errMsg}.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	RespondWithJSON(w, status, errorResponse{Error: errMsg})
}

// respondWithUserError writes a 422 carrying the positional context of an
// unrecognized or malformed file.
func respondWithUserError(w http.ResponseWriter, err error) {
	RespondWithJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   err.Error(),
		Details: userErrorDetails(err),
	})
}

func userErrorDetails(err error) *ErrorDetails {
	var formatErr *parsererror.UnrecognizedFormatError
	if errors.As(err, &formatErr) {
		return &ErrorDetails{
			Kind:    "unrecognized_format",
			Hint:    formatErr.Hint,
			Snippet: formatErr.Snippet,
		}
	}
	var parseErr *parsererror.ParseError
	if errors.As(err, &parseErr) {
		return &ErrorDetails{
			Kind:       "parse_error",
			Line:       parseErr.Line,
			RecordType: parseErr.RecordType,
			Path:       parseErr.Path,
			Field:      parseErr.Field,
			Value:      parseErr.Value,
		}
	}
	return nil
}
