package middleware

import (
	"crypto/hmac"
	"net/http"

	apperrors "classbook/pkg/errors"
	"classbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards decision endpoints. An empty key leaves them open.
func AdminKey(key string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		if key == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if !hmac.Equal([]byte(r.Header.Get(AdminKeyHeader)), []byte(key)) {
				log.Warn("Admin key verification failed",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				reject(w, r, log, apperrors.Unauthorized("Unauthorized"))
				return
			}
			next(w, r, ps)
		}
	}
}
