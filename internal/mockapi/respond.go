package mockapi

import (
	"encoding/json"
	"net/http"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   apiError `json:"error"`
}

type pageEnvelope struct {
	Content       any   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func writeCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, successEnvelope{Success: true, Data: data})
}

// writePage serves the bare pagination shape some gateway routes use.
func writePage(w http.ResponseWriter, content any, totalPages int, totalElements int64) {
	writeJSON(w, http.StatusOK, pageEnvelope{Content: content, TotalPages: totalPages, TotalElements: totalElements})
}

// writeWrappedPage serves the enveloped pagination shape.
func writeWrappedPage(w http.ResponseWriter, content any, totalPages int, totalElements int64) {
	writeJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Data:    pageEnvelope{Content: content, TotalPages: totalPages, TotalElements: totalElements},
	})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorEnvelope{
		Success: false,
		Message: msg,
		Error:   apiError{Code: code, Message: msg},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(r *http.Request, into any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(into)
}
