package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Response is the wire envelope used by every endpoint: code 0 on success,
// code 1 on failure with a human readable message.
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ParseRequestBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dest)
	if err != nil {
		slog.Error("error parsing request body", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("error parsing request body: %v", err))
		return false
	}
	return true
}

func writeEnvelope(w http.ResponseWriter, status int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		slog.Error("error serializing response body", "error", err)
	}
}

func WriteData(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, Response{Code: 0, Data: data})
}

func WriteDataMessage(w http.ResponseWriter, data interface{}, message string) {
	writeEnvelope(w, http.StatusOK, Response{Code: 0, Data: data, Message: message})
}

func WriteMessage(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusOK, Response{Code: 0, Message: message})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Response{Code: 1, Message: message})
}

func URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)

	if len(param) == 0 {
		return uuid.Nil, fmt.Errorf("missing {%v} url parameter", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid '%v' provided: %w", param, err)
	}

	return id, nil
}
