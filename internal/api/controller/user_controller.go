package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/response"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/service"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/session"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// UserController handles registration, login, logout and session checks.
type UserController struct {
	userService service.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	if _, err := uc.userService.Register(c.Request.Context(), &req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Registration successful")
}

// Login handles the user login endpoint. On success the session token is set
// as an HttpOnly cookie.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	user, token, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		// An unknown username is 401 here, not 404: login never confirms
		// which usernames exist beyond what the code field says.
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, response.Envelope{
				Err:     "User not found",
				Message: "User not found",
				Code:    "USER_NOT_FOUND",
			})
			return
		}
		response.Error(c, err)
		return
	}

	setSessionCookie(c, token, int(session.Lifetime.Seconds()))
	response.Success(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    models.UserInfo{ID: user.ID, Username: user.Username},
	})
}

// Logout ends the session. Logging out without a live session succeeds too.
func (uc *UserController) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	if err := uc.userService.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookie(c, "", -1)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// CheckSession reports whether the request carries a valid session and for
// whom. The frontend uses this on startup to restore a logged-in state.
func (uc *UserController) CheckSession(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	user, ok, err := uc.userService.Current(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"authenticated": false,
			"error":         "Not authenticated",
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"authenticated": true,
		"user":          models.UserInfo{ID: user.ID, Username: user.Username},
	})
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
}
