package respond

import (
	"encoding/json"
	"net/http"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, ErrorBody{Error: message})
}

// Validation отвечает 400 с указанием поля
func Validation(w http.ResponseWriter, r *http.Request, field, message string) {
	JSON(w, r, http.StatusBadRequest, ErrorBody{
		Error:   "validation error",
		Details: []FieldError{{Field: field, Message: message}},
	})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
