package middleware

import (
	"net/http"

	"github.com/rs/xid"

	"github.com/darmiel/cpd/internal/core"
)

const CorrelationIDHeader = "X-Correlation-ID"

// maxCorrelationIDLength bounds client supplied correlation ids.
const maxCorrelationIDLength = 64

// CorrelationIDMiddleware adopts the caller's correlation id or generates one.
// The id is echoed in the response and stored with every audit entry of the request.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if !validCorrelationID(id) {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)

		next.ServeHTTP(w, r.WithContext(core.WithCorrelationID(r.Context(), id)))
	})
}

// validCorrelationID accepts short, printable ASCII ids.
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
