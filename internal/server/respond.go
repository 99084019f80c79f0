package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clinops/docintake/internal/common"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(code))
	}
	if code >= 500 {
		slog.Error("request failed", "status", code, "error", err)
	}

	var body errorBody
	body.Error.Code = errorCode(code)
	body.Error.Message = err.Error()
	writeJson(w, code, body)
}

func errorCode(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusUnprocessableEntity:
		return "processing_failed"
	case status == http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case status >= 500:
		return "internal_error"
	default:
		return "invalid_request"
	}
}

// writeRepoError maps repository errors onto HTTP statuses.
func writeRepoError(w http.ResponseWriter, err error) {
	if common.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrValidation) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
