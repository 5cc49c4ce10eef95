package websession

import (
	"github.com/gorilla/sessions"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

const (
	keyUserID    = "user_id"
	flashSuccess = "_flash_success"
	flashError   = "_flash_error"
)

// UserID returns the signed-in user id, or "".
func UserID(s *sessions.Session) string {
	if s == nil {
		return ""
	}
	id, _ := s.Values[keyUserID].(string)
	return id
}

// SetUserID marks the session as signed in.
func SetUserID(s *sessions.Session, id string) {
	s.Values[keyUserID] = id
}

// ClearUserID signs the session out while keeping pending flashes.
func ClearUserID(s *sessions.Session) {
	delete(s.Values, keyUserID)
}

// AddSuccess queues a success message for the next rendered page.
func AddSuccess(s *sessions.Session, msg string) {
	s.AddFlash(msg, flashSuccess)
}

// AddError queues an error message for the next rendered page.
func AddError(s *sessions.Session, msg string) {
	s.AddFlash(msg, flashError)
}

// ConsumeFlashes removes and returns all pending messages. The second result reports
// whether anything was removed, in which case the session must be saved.
func ConsumeFlashes(s *sessions.Session) (domainauth.Flashes, bool) {
	var out domainauth.Flashes
	if s == nil {
		return out, false
	}
	out.Success = flashStrings(s.Flashes(flashSuccess))
	out.Error = flashStrings(s.Flashes(flashError))
	return out, !out.Empty()
}

// Expire marks the session for deletion on the next Save.
func Expire(s *sessions.Session) {
	s.Options.MaxAge = -1
	s.Values = make(map[any]any)
}

func flashStrings(vals []any) []string {
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if msg, ok := v.(string); ok && msg != "" {
			out = append(out, msg)
		}
	}
	return out
}
