package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/models"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Store      *store.Store
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(st *store.Store, jwtSecret string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		Store:      st,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- register ----------

type registerReq struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt,
		"last_login": u.LastLoginAt,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.ReasonMalformedRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
		return
	}
	if err := util.ValidateName(req.Name); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, err.Error())
		return
	}
	if !models.ValidRole(req.Role) {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest, "role must be admin, user or viewer")
		return
	}
	if !util.IsStrongPassword(req.Password) {
		util.Error(c, http.StatusUnprocessableEntity, util.ReasonMalformedRequest,
			"password must be 8-72 characters with upper case, lower case and a digit")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not hash password")
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := h.Store.CreateUser(&user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.Error(c, http.StatusConflict, util.ReasonConflict, "user with this email already exists")
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not create user")
		}
		return
	}

	util.Created(c, util.Response{"user": userPayload(&user)})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginFailedMsg is shared by the unknown-email and wrong-password paths;
// both must be byte-identical so callers cannot enumerate accounts.
const loginFailedMsg = "invalid email or password"

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.ReasonMalformedRequest, "invalid request body")
		return
	}

	user, err := h.Store.UserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// burn one bcrypt comparison so this path costs the same as a
			// wrong password
			util.BurnPasswordCheck(req.Password)
			util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, loginFailedMsg)
		} else {
			util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "user lookup failed")
		}
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, loginFailedMsg)
		return
	}

	now := time.Now()
	sess := models.Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(h.TokenTTL),
	}
	if err := h.Store.CreateSession(&sess); err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not create session")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, sess.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not generate token")
		return
	}

	user.LastLoginAt = &now
	_ = h.Store.TouchLastLogin(user.ID, now)

	util.Success(c, util.Response{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"user":       userPayload(user),
	})
}

// ---------- logout ----------

// Logout revokes the session behind the presenting token. The token stops
// authenticating on the next request.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	if err := h.Store.RevokeSession(sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		util.Error(c, http.StatusInternalServerError, util.ReasonServerError, "could not revoke session")
		return
	}

	util.Success(c, util.Response{"message": "logged out"})
}
