package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/ogurasousui/employee-management/internal/core/user"
	"github.com/ogurasousui/employee-management/internal/platform/logger"
	"github.com/ogurasousui/employee-management/internal/platform/upload"
)

type fieldErrorResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Message string               `json:"message"`
	Fields  []fieldErrorResponse `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError はドメインエラーを HTTP ステータスとレスポンスボディに変換します。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.From(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func toErrorResponse(err error) (int, errorResponse) {
	var verr *employee.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]fieldErrorResponse, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fieldErrorResponse{Field: f.Field, Reason: f.Reason})
		}
		return http.StatusBadRequest, errorResponse{Message: "validation failed", Fields: fields}
	case errors.Is(err, employee.ErrInvalidID):
		return http.StatusBadRequest, errorResponse{Message: "id is required"}
	case errors.Is(err, employee.ErrEmailAlreadyExists), errors.Is(err, user.ErrEmailAlreadyExists):
		return http.StatusConflict, errorResponse{
			Message: "email already exists",
			Fields:  []fieldErrorResponse{{Field: "email", Reason: "already exists"}},
		}
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound, errorResponse{Message: "employee not found"}
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Message: "user not found"}
	case errors.Is(err, employee.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "admin privileges required"}
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "invalid email or password"}
	case errors.Is(err, user.ErrInvalidEmail):
		return http.StatusBadRequest, fieldError("email", "must be a valid email address")
	case errors.Is(err, user.ErrInvalidName):
		return http.StatusBadRequest, fieldError("name", "is required")
	case errors.Is(err, user.ErrInvalidPassword):
		return http.StatusBadRequest, fieldError("password", "must be at least 6 characters")
	case errors.Is(err, user.ErrInvalidID):
		return http.StatusBadRequest, errorResponse{Message: "id is required"}
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusBadRequest, fieldError("profilePicture", "must be a jpg, png, gif or webp image")
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, fieldError("profilePicture", "exceeds the upload size limit")
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Message: "internal server error"}
	}
}

func fieldError(field, reason string) errorResponse {
	return errorResponse{
		Message: "validation failed",
		Fields:  []fieldErrorResponse{{Field: field, Reason: reason}},
	}
}
