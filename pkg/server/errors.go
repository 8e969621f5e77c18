// Copyright (c) 2025, The Theme Radar Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/serializer"
)

// Transport-level error codes. Bundle failures use the codes of pkg/errors.
const (
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// ErrorResponse represents error responses as per OpenAPI spec
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// WriteError writes error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes err using its structured code, if any, to pick
// the HTTP status. Bundle and path context is passed through as details.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	var details map[string]any
	var se *errors.StructuredError
	if stderrors.As(err, &se) && len(se.Context) > 0 {
		details = make(map[string]any, len(se.Context))
		for k, v := range se.Context {
			details[k] = v
		}
	}

	status := StatusFor(code)
	WriteError(w, r, status, string(code), err.Error(), status >= http.StatusInternalServerError, details)
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidIdentifier, errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrCodeBundleNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeIncompleteBundle, errors.ErrCodePathEscape,
		errors.ErrCodeDuplicatePath, errors.ErrCodeEmptyBundle:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeMismatch:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
