package middleware

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

// Write выполняет запись данных в HTTP ответ и сохраняет информацию о размере данных.
func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	const op = "logging response"

	if w.responseData.status == 0 {
		w.responseData.status = http.StatusOK
	}

	size, err := w.ResponseWriter.Write(b)
	w.responseData.size += size

	if err != nil {
		return size, errors.Wrap(err, op)
	}

	return size, nil
}

// WriteHeader отправляет заголовок HTTP ответа с указанным кодом и сохраняет отправленный статус.
func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	if w.responseData.status == 0 {
		w.responseData.status = statusCode
	}
}

// ResponseLogger возвращает посредника, который логирует сведения из HTTP ответа.
func ResponseLogger(logger *zap.Logger) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		log := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := &responseData{}
			lw := loggingResponseWriter{
				ResponseWriter: w,
				responseData:   resp,
			}

			h.ServeHTTP(&lw, r)

			duration := time.Since(start)
			requestID, _ := GetRequestID(r.Context())
			level := zap.InfoLevel
			if resp.status >= http.StatusInternalServerError {
				level = zap.WarnLevel
			}
			logger.Log(level, "request served",
				zap.String("request_id", requestID),
				zap.String("uri", r.RequestURI),
				zap.String("method", r.Method),
				zap.Int("status", resp.status),
				zap.Duration("duration", duration),
				zap.Int("size", resp.size),
			)
		}
		return http.HandlerFunc(log)
	}
}
