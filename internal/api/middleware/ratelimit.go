package middleware

import (
	"net"
	"net/http"

	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/daria-hk/contacts-api/internal/utils"
)

// RateLimit caps requests per client address using the given limiter. Over
// the cap every request gets a uniform 429 instead of the normal payload.
func RateLimit(limiter *services.FixedWindow, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientAddr(r)) {
			utils.JSONResponse(w, http.StatusTooManyRequests, utils.Payload{
				Success: false,
				Message: "Request limit exceeded. Try again later.",
			})
			return
		}
		next(w, r)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
