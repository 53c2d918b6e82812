package http

import "seabattle/internal/store"

// RegisterRequest is the payload of POST /api/users.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=4"`
}

// LoginRequest is the payload of POST /api/login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserView struct {
	Login string `json:"login"`
	Email string `json:"email,omitempty"`
	Score int    `json:"score"`
}

func userView(u store.User) UserView {
	return UserView{Login: u.Login, Email: u.Email, Score: u.Score}
}

type StatusView struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var (
	errNotLoggedIn   = StatusView{Status: "error", Message: "not logged in"}
	errBadLogin      = StatusView{Status: "error", Message: "bad login or password"}
	errUserExists    = StatusView{Status: "error", Message: "user already exists"}
	errBadPayload    = StatusView{Status: "error", Message: "invalid payload"}
	errInternal      = StatusView{Status: "error", Message: "internal error"}
	successLoggedOut = StatusView{Status: "ok", Message: "logged out"}
)
