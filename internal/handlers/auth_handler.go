package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/auth"
)

// AuthHandler serves account creation and session endpoints.
type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid signup payload"))
		return
	}
	session, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid login payload"))
		return
	}
	session, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

// Logout is stateless on the server side; the client discards its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me resolves the profile behind the presented token, the request/response
// analog of the original session subscription.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	user, err := h.svc.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		fail(c, err)
		return
	}
	user.PasswordHash = ""
	ok(c, user)
}
