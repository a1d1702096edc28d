package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// users

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var p services.Profile
	if err := decodeJSON(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.Users.Register(r.Context(), callerID(r.Context()), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Users.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	var p services.Profile
	if err := decodeJSON(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.Users.UpdateProfile(r.Context(), callerID(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Users.Delete(r.Context(), callerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bugs

func (a *API) writeBugs(w http.ResponseWriter, r *http.Request, list []*models.Bug, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) listBugs(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Bugs.List(r.Context())
	a.writeBugs(w, r, list, err)
}

func (a *API) bugsByTag(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Bugs.ListByTag(r.Context(), chi.URLParam(r, "tagId"))
	a.writeBugs(w, r, list, err)
}

func (a *API) bugsByText(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Bugs.SearchTitle(r.Context(), chi.URLParam(r, "text"))
	a.writeBugs(w, r, list, err)
}

func (a *API) bugsByUser(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Bugs.ListByAuthor(r.Context(), chi.URLParam(r, "userId"))
	a.writeBugs(w, r, list, err)
}

func (a *API) myBugs(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Bugs.MyBugs(r.Context(), callerID(r.Context()))
	a.writeBugs(w, r, list, err)
}

func (a *API) getBug(w http.ResponseWriter, r *http.Request) {
	b, err := a.svc.Bugs.Get(r.Context(), chi.URLParam(r, "bugId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) createBug(w http.ResponseWriter, r *http.Request) {
	var in services.BugInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Bugs.Create(r.Context(), callerID(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) updateBug(w http.ResponseWriter, r *http.Request) {
	var u services.BugUpdate
	if err := decodeJSON(r, &u); err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.svc.Bugs.Update(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId"), u)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) deleteBug(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Bugs.Delete(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) solveBug(w http.ResponseWriter, r *http.Request) {
	b, err := a.svc.Bugs.MarkSolved(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// comments

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Comments.ListByBug(r.Context(), chi.URLParam(r, "bugId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getComment(w http.ResponseWriter, r *http.Request) {
	c, err := a.svc.Comments.Get(r.Context(), chi.URLParam(r, "bugId"), chi.URLParam(r, "commentId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Comments.Create(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId"), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateComment(w http.ResponseWriter, r *http.Request) {
	var u services.CommentUpdate
	if err := decodeJSON(r, &u); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Comments.Update(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId"), chi.URLParam(r, "commentId"), u)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := a.svc.Comments.Delete(r.Context(), callerID(r.Context()), chi.URLParam(r, "bugId"), chi.URLParam(r, "commentId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// votes

func voteTarget(r *http.Request) (models.Target, error) {
	t := models.Target{Kind: models.TargetKind(chi.URLParam(r, "kind")), ID: chi.URLParam(r, "id")}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	return t, nil
}

func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	target, err := voteTarget(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	isUpvote, err := strconv.ParseBool(r.URL.Query().Get("isUpvote"))
	if err != nil {
		a.writeError(w, r, fmt.Errorf("isUpvote must be true or false: %w", common.ErrValidation))
		return
	}
	res, err := a.svc.Votes.CastVote(r.Context(), callerID(r.Context()), target, isUpvote)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) removeVote(w http.ResponseWriter, r *http.Request) {
	target, err := voteTarget(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.svc.Votes.RemoveVote(r.Context(), callerID(r.Context()), target)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": v != nil, "vote": v})
}

// tags

func (a *API) listTags(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Tags.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getTag(w http.ResponseWriter, r *http.Request) {
	t, err := a.svc.Tags.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) createTag(w http.ResponseWriter, r *http.Request) {
	t, err := a.svc.Tags.FindOrCreate(r.Context(), callerID(r.Context()), r.URL.Query().Get("name"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// uploads

type uploadRequest struct {
	FileName string `json:"fileName"`
}

func (a *API) createImageUpload(w http.ResponseWriter, r *http.Request) {
	var in uploadRequest
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	up, err := a.svc.Images.CreateUpload(r.Context(), callerID(r.Context()), in.FileName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}
