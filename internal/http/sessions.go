package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	applog "goldloan/internal/log"
	"goldloan/internal/session"
)

const sessionCookieName = "goldloan_session"

// loadSession returns the visitor's session, starting a new one when the
// cookie is missing, malformed or expired.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	ctx := r.Context()
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			sess, err := s.sessions.Get(ctx, c.Value)
			if err == nil {
				return sess, nil
			}
			if !errors.Is(err, session.ErrNotFound) {
				return nil, fmt.Errorf("load session: %w", err)
			}
		}
	}

	sess := session.New()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.appMetrics.inc(&s.appMetrics.sessionsStarted)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	applog.FromContext(ctx).WithComponent(applog.ComponentSession).DebugContext(ctx, "Session started",
		applog.FieldSessionID, sess.ID)
	return sess, nil
}

func (s *Server) saveSession(r *http.Request, sess *session.Session) error {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// sessionFailure reports a store error to the visitor.
func (s *Server) sessionFailure(w http.ResponseWriter, r *http.Request, err error, op string) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
		"Session store failure", err, applog.ComponentSession, op,
		applog.NewFields().WithErrorType(applog.ErrorTypeSession))
	ServiceUnavailableError("Your session could not be loaded. Please try again.").Write(w)
}
