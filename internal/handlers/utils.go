package handlers

import (
	"encoding/json"
	"net/http"

	"gallery-viewer/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding or write errors are logged since there is no way to recover
// from them mid-response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status
// code, using the error/message body shape of the API.
func writeJSONError(w http.ResponseWriter, errorTitle, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{
		"error":   errorTitle,
		"message": message,
	})
}
