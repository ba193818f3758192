package middleware

import (
	"net/http"

	apperrors "classbook/pkg/errors"
	httputil "classbook/pkg/http"
	"classbook/pkg/logger"
)

func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, err *apperrors.AppError) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response",
			"request_id", RequestIDFromContext(r.Context()),
			"code", err.Code,
			"error", writeErr,
		)
	}
}
