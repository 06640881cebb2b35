package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"adforge-server/modules/common/apierr"
)

// WriteJSON - JSON 응답 전송
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// WriteError - 오류 종류별 HTTP 상태 매핑 후 JSON 오류 응답
// InputError → 400, ProviderError → 502, CompositionError → 500
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var inputErr *apierr.InputError
	var providerErr *apierr.ProviderError
	var compErr *apierr.CompositionError

	body := map[string]interface{}{"error": err.Error()}

	switch {
	case errors.As(err, &inputErr):
		status = http.StatusBadRequest
	case errors.As(err, &providerErr):
		status = http.StatusBadGateway
		body["provider"] = providerErr.Provider
	case errors.As(err, &compErr):
		status = http.StatusInternalServerError
		if compErr.Output != "" {
			body["tool_output"] = compErr.Output
		}
	}

	WriteJSON(w, status, body)
}
