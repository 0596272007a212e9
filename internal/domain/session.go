package domain

import "fmt"

// Session is the identity of the viewer performing a request. It is built
// once per request by the auth middleware and passed explicitly to every
// operation that needs to know who is acting.
type Session struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous is the session of a viewer that is not logged in.
var Anonymous = Session{}

// NewSession builds an authenticated session for the given user.
func NewSession(u *User) Session {
	s := Session{
		Email:         u.Email,
		Name:          u.DisplayName(),
		Authenticated: true,
	}
	if u.ID != nil {
		s.UserID = fmt.Sprintf("%s:%v", u.ID.Table, u.ID.ID)
	}
	if u.Avatar != nil {
		s.Avatar = *u.Avatar
	}
	return s
}

// RequireAuth returns ErrAuthRequired for sessions without an authenticated user.
func (s Session) RequireAuth() error {
	if !s.Authenticated || s.UserID == "" {
		return ErrAuthRequired
	}
	return nil
}
