package http

import (
	"errors"
	"net/http"
	"strconv"

	"seabattle/internal/api/auth"
	"seabattle/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const defaultLeaderboardLimit = 10

// RegisterHandler creates an account with a bcrypt-hashed password.
func RegisterHandler(users store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errBadPayload)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Error("can't hash password")
			c.JSON(http.StatusInternalServerError, errInternal)
			return
		}
		u, err := users.Register(c.Request.Context(), store.User{
			Login:        req.Login,
			Email:        req.Email,
			PasswordHash: string(hash),
		})
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, errUserExists)
			return
		}
		if err != nil {
			log.WithError(err).Error("can't register user")
			c.JSON(http.StatusInternalServerError, errInternal)
			return
		}
		log.WithField("login", u.Login).Info("user registered")
		c.JSON(http.StatusCreated, userView(u))
	}
}

func LoginHandler(users store.Store, cookies *auth.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errBadPayload)
			return
		}
		u, err := users.Lookup(c.Request.Context(), req.Login)
		if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusBadRequest, errBadLogin)
			return
		}
		if err := cookies.Set(c, u.Login); err != nil {
			log.WithError(err).Error("can't issue identity cookie")
			c.JSON(http.StatusInternalServerError, errInternal)
			return
		}
		c.JSON(http.StatusOK, userView(u))
	}
}

func LogoutHandler(cookies *auth.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies.Clear(c)
		c.JSON(http.StatusOK, successLoggedOut)
	}
}

// InfoHandler describes the logged-in user.
func InfoHandler(users store.Store, cookies *auth.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		login, ok := cookies.Login(c.Request)
		if !ok {
			c.JSON(http.StatusUnauthorized, errNotLoggedIn)
			return
		}
		u, err := users.Lookup(c.Request.Context(), login)
		if err != nil {
			cookies.Clear(c)
			c.JSON(http.StatusUnauthorized, errNotLoggedIn)
			return
		}
		c.JSON(http.StatusOK, userView(u))
	}
}

func LeaderboardHandler(users store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultLeaderboardLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, errBadPayload)
				return
			}
			limit = n
		}
		leaders, err := users.Leaderboard(c.Request.Context(), limit)
		if err != nil {
			log.WithError(err).Error("can't load leaderboard")
			c.JSON(http.StatusInternalServerError, errInternal)
			return
		}
		out := make([]UserView, 0, len(leaders))
		for _, u := range leaders {
			out = append(out, userView(u))
		}
		c.JSON(http.StatusOK, out)
	}
}
