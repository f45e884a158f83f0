// Package http adapts a stile Flow to HTTP routes. It implements the hosting
// contract: GET of the flow root initializes the session and redirects to the
// entry step, GET of a step URL renders its view model (as JSON), and POST of
// a step URL submits it. Navigation corrections surface as 302 redirects.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fewston/stile"
	"github.com/fewston/stile/internal/logging"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/session"
)

// sessionCookie carries the browser's wizard-session identifier. One cookie
// spans all flows; the store key adds the flow name so parallel wizards do
// not clobber each other.
const sessionCookie = "stile_sid"

// StepURLs returns the resolver matching the routes NewHandler serves when
// mounted under prefix.
func StepURLs(prefix string) ports.URLFunc {
	return func(identity string, step domain.Step) string {
		return fmt.Sprintf("%s/%s/%s", prefix, identity, step)
	}
}

// SecurityFunc extracts the acting user from a request. The surrounding
// portal's authentication middleware is expected to have populated it.
type SecurityFunc func(r *http.Request) domain.SecurityContext

// HeaderSecurity reads the acting user from a trusted reverse-proxy header.
func HeaderSecurity(header string) SecurityFunc {
	return func(r *http.Request) domain.SecurityContext {
		return domain.SecurityContext{Username: r.Header.Get(header)}
	}
}

// Server serves one flow's wizard routes.
type Server[D any] struct {
	flow     *stile.Flow[D]
	sessions *session.Manager[D]
	security SecurityFunc
	logger   *slog.Logger
}

// Option configures the Server.
type Option[D any] func(*Server[D])

// WithSecurity sets the security-context extractor.
func WithSecurity[D any](fn SecurityFunc) Option[D] {
	return func(s *Server[D]) { s.security = fn }
}

// WithLogger sets a structured logger.
func WithLogger[D any](logger *slog.Logger) Option[D] {
	return func(s *Server[D]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler mounts a flow on a fresh chi router:
//
//	GET  /{identity}         flow entry (reset + redirect to first step)
//	GET  /{identity}/{step}  view a step
//	POST /{identity}/{step}  submit a step
func NewHandler[D any](flow *stile.Flow[D], sessions *session.Manager[D], opts ...Option[D]) http.Handler {
	s := &Server[D]{
		flow:     flow,
		sessions: sessions,
		security: HeaderSecurity("X-Username"),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/{identity}", s.initFlow)
	r.Get("/{identity}/{step}", s.viewStep)
	r.Post("/{identity}/{step}", s.updateStep)
	return r
}

// sessionKey returns the store key for this browser and flow, issuing the
// session cookie on first contact.
func (s *Server[D]) sessionKey(w http.ResponseWriter, r *http.Request) string {
	sid := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		sid = c.Value
	}
	if sid == "" {
		sid = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.flow.Name() + ":" + sid
}

func (s *Server[D]) initFlow(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	sec := s.security(r)
	key := s.sessionKey(w, r)

	var red *stile.Redirect
	err := s.sessions.Update(r.Context(), key, func(ctx context.Context, sess *domain.Session[D]) error {
		var err error
		red, err = s.flow.Init(ctx, identity, sec, sess)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, red.Location, http.StatusFound)
}

func (s *Server[D]) viewStep(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	step := domain.Step(chi.URLParam(r, "step"))
	key := s.sessionKey(w, r)

	var out *stile.Outcome
	err := s.sessions.Update(r.Context(), key, func(ctx context.Context, sess *domain.Session[D]) error {
		var err error
		out, err = s.flow.ViewStep(ctx, identity, step, sess)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, out)
}

func (s *Server[D]) updateStep(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	step := domain.Step(chi.URLParam(r, "step"))

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	key := s.sessionKey(w, r)

	var out *stile.Outcome
	err := s.sessions.Update(r.Context(), key, func(ctx context.Context, sess *domain.Session[D]) error {
		var err error
		out, err = s.flow.UpdateStep(ctx, identity, step, sess, r.PostForm)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, out)
}

func (s *Server[D]) respond(w http.ResponseWriter, r *http.Request, out *stile.Outcome) {
	if out.Redirect != nil {
		http.Redirect(w, r, out.Redirect.Location, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out.View); err != nil {
		s.logger.Error("view model encode failed", "err", err)
	}
}

// fail maps the engine's error taxonomy onto status codes: protocol
// violations are the client's fault, denied init is forbidden, and anything
// else is a flow-declaration or infrastructure defect.
func (s *Server[D]) fail(w http.ResponseWriter, r *http.Request, err error) {
	var perr *stile.ProtocolError
	var derr *domain.AccessDeniedError

	switch {
	case errors.As(err, &perr):
		s.logger.Warn("protocol violation", "flow", s.flow.Name(), "err", err)
		http.Error(w, perr.Error(), http.StatusMethodNotAllowed)
	case errors.As(err, &derr):
		s.logger.Warn("access denied", "flow", s.flow.Name(), "identity", derr.Identity)
		http.Error(w, "access denied", http.StatusForbidden)
	default:
		s.logger.Error("wizard request failed", "flow", s.flow.Name(), "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
