package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON body of every failed API call.
type APIError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func New(message string) APIError {
	return APIError{OK: false, Error: message}
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
