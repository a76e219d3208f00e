package response

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog/log"
)

type ErrorBody struct {
	Error string `json:"error"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

func Message(w http.ResponseWriter, msg string) {
	SuccessJSON(w, http.StatusOK, MessageBody{Message: msg})
}

// ErrorJSON status 由錯誤碼決定, 內部錯誤只回 "SERVER ERROR" 並記錄原因
func ErrorJSON(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.As(err)
	if appErr.Code == apperr.InternalErrorCode {
		requestID, _ := r.Context().Value(constants.RequestIDKey).(string)
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Msg("internal error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code.HTTPStatus())
	if encErr := json.NewEncoder(w).Encode(ErrorBody{Error: appErr.PublicMessage()}); encErr != nil {
		log.Error().Err(encErr).Msg("encode error response failed")
	}
}
