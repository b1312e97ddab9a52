package providers

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func WriteJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	body, err := json.Marshal(ErrorResponse{Error: message, Status: status})
	if err != nil {
		http.Error(w, message, status)
		return
	}
	WriteJSON(w, status, body)
}
