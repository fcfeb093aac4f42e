package handler

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON envelope used for every failure.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// messageResponse is the JSON envelope for successes with no payload.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func respondInternalError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusInternalServerError, errorResponse{
		Success: false,
		Message: "Internal server error",
		Error:   err.Error(),
	})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Success: true, Message: message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
