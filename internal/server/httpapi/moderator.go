package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type banRequest struct {
	Reason string `json:"reason"`
}

type messageResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

// moderatorAction wraps a handler that needs the re-verified caller uid.
func (a *API) moderatorAction(fn func(w http.ResponseWriter, r *http.Request, moderatorID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := a.moderatorCaller(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		fn(w, r, uid)
	}
}

func (a *API) checkModerator(w http.ResponseWriter, r *http.Request, uid string) {
	ok, err := a.svc.Moderation.IsModerator(r.Context(), uid)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isModerator": ok})
}

func (a *API) banUser(w http.ResponseWriter, r *http.Request, uid string) {
	var in banRequest
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.Moderation.BanUser(r.Context(), uid, chi.URLParam(r, "userId"), in.Reason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User banned successfully", User: u})
}

func (a *API) unbanUser(w http.ResponseWriter, r *http.Request, uid string) {
	u, err := a.svc.Moderation.UnbanUser(r.Context(), uid, chi.URLParam(r, "userId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User unbanned successfully", User: u})
}

func (a *API) promoteUser(w http.ResponseWriter, r *http.Request, uid string) {
	u, err := a.svc.Moderation.PromoteToModerator(r.Context(), uid, chi.URLParam(r, "userId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User promoted to moderator successfully", User: u})
}

func (a *API) demoteUser(w http.ResponseWriter, r *http.Request, uid string) {
	u, err := a.svc.Moderation.DemoteFromModerator(r.Context(), uid, chi.URLParam(r, "userId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User demoted from moderator successfully", User: u})
}

func (a *API) moderatorUpdateBug(w http.ResponseWriter, r *http.Request, uid string) {
	var u services.BugUpdate
	if err := decodeJSON(r, &u); err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Moderation.UpdateBug(r.Context(), uid, chi.URLParam(r, "id"), u)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) moderatorDeleteBug(w http.ResponseWriter, r *http.Request, uid string) {
	if err := a.svc.Moderation.DeleteBug(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) moderatorUpdateComment(w http.ResponseWriter, r *http.Request, uid string) {
	var u services.CommentUpdate
	if err := decodeJSON(r, &u); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Moderation.UpdateComment(r.Context(), uid, chi.URLParam(r, "id"), u)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) moderatorDeleteComment(w http.ResponseWriter, r *http.Request, uid string) {
	if err := a.svc.Moderation.DeleteComment(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) recalculateScore(w http.ResponseWriter, r *http.Request, uid string) {
	userID := chi.URLParam(r, "userId")
	s, err := a.svc.Moderation.RecalculateScore(r.Context(), uid, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uid": userID, "score": s})
}

func (a *API) recalculateAllScores(w http.ResponseWriter, r *http.Request, uid string) {
	report, err := a.svc.Moderation.RecalculateAllScores(r.Context(), uid)
	if report == nil && err != nil {
		a.writeError(w, r, err)
		return
	}
	body := map[string]any{"users": report.Users, "failed": report.Failed}
	if err != nil {
		a.logger.Warn(r.Context(), "some scores were not recalculated", "error", err)
	}
	writeJSON(w, http.StatusOK, body)
}
