// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// response is the standard API response wrapper.
type response struct {
	Data any   `json:"data,omitempty"`
	Meta *meta `json:"meta,omitempty"`
}

// meta carries collection metadata.
type meta struct {
	Total int `json:"total"`
}

// errorResponse is the standard API error response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Data: data})
}

func writeList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, response{Data: data, Meta: &meta{Total: total}})
}

func writeCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, response{Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string, details any) {
	writeJSON(w, statusCode, errorResponse{Error: errorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func writeBadRequest(w http.ResponseWriter, message string, details any) {
	writeError(w, http.StatusBadRequest, "bad_request", message, details)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message, nil)
}

func writeUnprocessable(w http.ResponseWriter, message string, details any) {
	writeError(w, http.StatusUnprocessableEntity, "validation_failed", message, details)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// payload problems with a uniform error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid JSON body", nil)
		return false
	}
	return true
}
