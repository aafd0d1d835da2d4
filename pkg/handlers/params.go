package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// ParseSessionID extracts the session ID from the request path.
// Returns the ID and true on success, or "" and false (after writing an error
// response) when it is missing.
// Expects path parameter: sid
func ParseSessionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return requirePathValue(w, r, "sid", "invalid_session_id", "Session ID is required", logger)
}

// ParseProjectID extracts the persisted project ID from the request path.
// Expects path parameter: pid
func ParseProjectID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return requirePathValue(w, r, "pid", "invalid_project_id", "Project ID is required", logger)
}

// ParseStepIndex extracts the target step from the request path.
// Expects path parameter: index
func ParseStepIndex(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_step", "Step index must be an integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return index, true
}

func requirePathValue(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (string, bool) {
	value := strings.TrimSpace(r.PathValue(pathParam))
	if value == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// DecodeRequest reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set, leaving dst at its zero value.
func DecodeRequest(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool, logger *zap.Logger) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
				logger.Error("Failed to write error response", zap.Error(err))
			}
			return false
		}
	}

	if err := validate.Struct(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_failed", validationMessage(err)); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

// ValidatePathEnum checks a path value against a validator tag such as
// "oneof=desktop mobile tablet".
func ValidatePathEnum(w http.ResponseWriter, r *http.Request, pathParam, tag string, logger *zap.Logger) (string, bool) {
	value := r.PathValue(pathParam)
	if err := validate.Var(value, "required,"+tag); err != nil {
		msg := fmt.Sprintf("Invalid %s %q", pathParam, value)
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_"+pathParam, msg); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// validationMessage renders the first few field errors as one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, "; ")
}
