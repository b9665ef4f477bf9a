package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// envelope is the uniform response wrapper: data always holds an array, and
// metadata is present only on list responses.
type envelope struct {
	Data     any `json:"data"`
	Metadata any `json:"metadata,omitempty"`
}

// errorBody mirrors the original exception-filter shape.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any, metadata any) {
	writeJSON(w, status, envelope{Data: data, Metadata: metadata})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{StatusCode: status, Message: message})
}

// WriteError is an exported helper so middleware outside this package can
// emit the same JSON error shape.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}
