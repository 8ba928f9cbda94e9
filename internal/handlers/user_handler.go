package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
	"github.com/Arman-Bisht/med-connect/internal/snapshot"
	"github.com/Arman-Bisht/med-connect/internal/store"
)

// UserHandler serves physician directory endpoints.
type UserHandler struct {
	st store.Store
}

func NewUserHandler(st store.Store) *UserHandler {
	return &UserHandler{st: st}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.loadUsers(c)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, users)
}

// Specialists lists the consultable side of the network: specialists, and
// only the available ones unless ?all=true.
func (h *UserHandler) Specialists(c *gin.Context) {
	users, err := h.loadUsers(c)
	if err != nil {
		fail(c, err)
		return
	}
	includeBusy := c.Query("all") == "true"

	specialists := make([]*models.User, 0, len(users))
	for _, u := range users {
		if !u.IsSpecialist() {
			continue
		}
		if !includeBusy && u.Availability != models.AvailabilityAvailable {
			continue
		}
		specialists = append(specialists, u)
	}
	ok(c, specialists)
}

func (h *UserHandler) loadUsers(c *gin.Context) ([]*models.User, error) {
	docs, err := h.st.List(c.Request.Context(), store.Users)
	if err != nil {
		return nil, apperr.Remote("could not load users", err)
	}
	users := make([]*models.User, 0, len(docs))
	for _, doc := range docs {
		u, err := snapshot.DecodeUser(doc)
		if err != nil {
			return nil, apperr.Remote("corrupt user record", err)
		}
		u.PasswordHash = ""
		users = append(users, u)
	}
	return users, nil
}
