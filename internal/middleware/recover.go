package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// MemoryLogger records a labelled memory snapshot.
type MemoryLogger interface {
	LogMemoryUsage(label string)
}

// Recoverer turns a handler panic into a JSON 500 and records a memory
// snapshot labelled "panic".
func Recoverer(log *zap.Logger, mem MemoryLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("handler panicked",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if mem != nil {
					mem.LogMemoryUsage("panic")
				}
				if r.Header.Get("Connection") != "Upgrade" {
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
