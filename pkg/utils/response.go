package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody 是所有 4xx/5xx JSON 响应的结构
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("[http] failed to encode response", "error", err)
	}
}

// RespondError 发送错误响应，附带请求 ID 便于和日志对应
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := ErrorBody{Error: message}
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
	}
	RespondJSON(w, status, body)
}
