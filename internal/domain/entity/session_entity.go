package entity

import "time"

// Session is the server-side record behind a session cookie. It only names
// the user; the User itself is loaded fresh on every request.
type Session struct {
	ID        string
	UserID    string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) OwnerID() string {
	if s == nil {
		return ""
	}
	return s.UserID
}
