package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// dataResponse is the success envelope
type dataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// errorResponse is the failure envelope
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeData writes a success envelope around data
func (s *HTTPServer) writeData(w http.ResponseWriter, status int, data interface{}) {
	s.writeJSON(w, status, dataResponse{Success: true, Data: data})
}

// writeError maps err onto a status code and failure envelope.
// Store errors carry the driver's native code.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := utils.HTTPStatus(err)
	resp := errorResponse{Success: false}

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Code = appErr.StoreCode
		if err.Error() != appErr.Error() {
			resp.Details = err.Error()
		} else {
			resp.Details = appErr.Details
		}
	} else {
		resp.Error = "Internal server error"
		resp.Message = err.Error()
	}

	fields := logrus.Fields{
		"status":     status,
		"path":       r.URL.Path,
		"error":      err.Error(),
		"request_id": RequestIDFromContext(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithFields(fields).Error("Request failed")
	} else {
		s.logger.WithFields(fields).Warn("Request rejected")
	}

	s.writeJSON(w, status, resp)
}

// notFoundHandler answers unmatched paths
func (s *HTTPServer) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{
		Success: false,
		Error:   "Endpoint not found",
		Path:    r.URL.Path,
	})
}

// methodNotAllowedHandler answers known paths hit with the wrong method
func (s *HTTPServer) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Success: false,
		Error:   "Method not allowed",
		Path:    r.URL.Path,
	})
}
