package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// bannedMessage is returned to a verified caller who has been banned.
const bannedMessage = "Your account has been banned. Please contact support."

func callerID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return "", false
	}
	t := strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
	return t, t != ""
}

// requestLogger logs one line per request.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// authenticate resolves an optional bearer token. A bad token is rejected
// with 401 and a banned caller with 403; requests without a token pass
// through anonymously.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		uid, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: http.StatusText(http.StatusUnauthorized), Message: err.Error()})
			return
		}

		banned, err := a.svc.Gate.IsBanned(r.Context(), uid)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		if banned {
			writeJSON(w, http.StatusForbidden, errorBody{Error: bannedMessage})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

// requireLogin rejects anonymous requests.
func (a *API) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerID(r.Context()) == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Error:   http.StatusText(http.StatusUnauthorized),
				Message: "missing bearer token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// moderatorCaller verifies the bearer token again on every moderator call
// instead of trusting the request context.
func (a *API) moderatorCaller(r *http.Request) (string, error) {
	token, ok := bearerToken(r)
	if !ok {
		return "", common.ErrorUnauthorized
	}
	uid, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return "", errors.Join(common.ErrorUnauthorized, err)
	}
	return uid, nil
}
