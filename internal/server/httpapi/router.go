// Package httpapi is the JSON/HTTP surface of BugRadar.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/auth"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the store answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups the business services the handlers call.
type Services struct {
	Gate       *services.Gate
	Users      *services.UserService
	Bugs       *services.BugService
	Comments   *services.CommentService
	Votes      *services.VoteService
	Tags       *services.TagService
	Images     *services.ImageService
	Moderation *services.ModerationService
}

type API struct {
	svc      Services
	verifier auth.Verifier
	store    Pinger
	logger   logging.Logger
}

func NewAPI(svc Services, v auth.Verifier, store Pinger, l logging.Logger) *API {
	return &API{svc: svc, verifier: v, store: store, logger: l.With("module", "http")}
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", a.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", a.listUsers)
			r.Get("/{id}", a.getUser)
			r.Group(func(r chi.Router) {
				r.Use(a.requireLogin)
				r.Post("/", a.registerUser)
				r.Put("/{id}", a.updateUser)
				r.Delete("/{id}", a.deleteUser)
			})
		})

		r.Route("/bugs", func(r chi.Router) {
			r.Get("/", a.listBugs)
			r.Get("/filter/tag/{tagId}", a.bugsByTag)
			r.Get("/filter/text/{text}", a.bugsByText)
			r.Get("/filter/user/{userId}", a.bugsByUser)
			r.With(a.requireLogin).Get("/my-bugs", a.myBugs)
			r.Get("/{bugId}", a.getBug)
			r.Group(func(r chi.Router) {
				r.Use(a.requireLogin)
				r.Post("/", a.createBug)
				r.Put("/{bugId}", a.updateBug)
				r.Delete("/{bugId}", a.deleteBug)
				r.Post("/{bugId}/solve", a.solveBug)
			})

			r.Route("/{bugId}/comments", func(r chi.Router) {
				r.Get("/", a.listComments)
				r.Get("/{commentId}", a.getComment)
				r.Group(func(r chi.Router) {
					r.Use(a.requireLogin)
					r.Post("/", a.createComment)
					r.Put("/{commentId}", a.updateComment)
					r.Delete("/{commentId}", a.deleteComment)
				})
			})
		})

		r.Route("/votes", func(r chi.Router) {
			r.Use(a.requireLogin)
			r.Post("/{kind}/{id}", a.castVote)
			r.Delete("/{kind}/{id}", a.removeVote)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", a.listTags)
			r.Get("/{id}", a.getTag)
			r.With(a.requireLogin).Post("/", a.createTag)
		})

		r.With(a.requireLogin).Post("/uploads/images", a.createImageUpload)

		r.Route("/moderator", func(r chi.Router) {
			r.Get("/check", a.moderatorAction(a.checkModerator))
			r.Post("/ban/{userId}", a.moderatorAction(a.banUser))
			r.Post("/unban/{userId}", a.moderatorAction(a.unbanUser))
			r.Post("/promote/{userId}", a.moderatorAction(a.promoteUser))
			r.Post("/demote/{userId}", a.moderatorAction(a.demoteUser))
			r.Put("/bugs/{id}", a.moderatorAction(a.moderatorUpdateBug))
			r.Delete("/bugs/{id}", a.moderatorAction(a.moderatorDeleteBug))
			r.Put("/comments/{id}", a.moderatorAction(a.moderatorUpdateComment))
			r.Delete("/comments/{id}", a.moderatorAction(a.moderatorDeleteComment))
			r.Post("/recalculate-score/{userId}", a.moderatorAction(a.recalculateScore))
			r.Post("/recalculate-all-scores", a.moderatorAction(a.recalculateAllScores))
		})
	})

	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.store.PingContext(ctx); err != nil {
		a.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
