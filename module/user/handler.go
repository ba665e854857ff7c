package user

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"VConnct/logger"
	"VConnct/middleware"
	"VConnct/module/user/service"
	"VConnct/service/gateway"
	errs "VConnct/tools/errs"
)

const maxAvatarBytes = 5 << 20

type Handler struct {
	svc          *service.Service
	cookieTTL    time.Duration
	secureCookie bool
}

func NewHandler(svc *service.Service, cookieTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{svc: svc, cookieTTL: cookieTTL, secureCookie: secureCookie}
}

// Register mounts the auth routes under /api/auth.
func (h *Handler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/me", auth, h.Me)
	r.PUT("/update", auth, h.UpdateProfile)
	r.PUT("/update-password", auth, h.UpdatePassword)
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	// HttpOnly keeps the token away from page scripts
	c.SetCookie(gateway.SessionCookieName, token, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(gateway.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	user, token, _, err := h.svc.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"message": errs.Msg(err)})
		case errs.Code(err) >= 40001 && errs.Code(err) <= 40003:
			c.JSON(http.StatusBadRequest, gin.H{"message": errs.Msg(err)})
		default:
			logger.Errorf("[auth] signup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, userResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	user, token, _, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		logger.Errorf("[auth] login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, userResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(gateway.SessionCookieName)
	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		// the cookie still gets cleared; revocation is defense in depth
		logger.Warnf("[auth] token revoke failed: %v", err)
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	self := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("profilePic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Profile picture is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile picture"})
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), self.ID, data, header.Header.Get("Content-Type"))
	if err != nil {
		logger.Errorf("[auth] update profile failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, userResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
	})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	self := middleware.CurrentUser(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	err := h.svc.UpdatePassword(c.Request.Context(), self.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"message": errs.Msg(err)})
		case errs.Code(err) == 40003:
			c.JSON(http.StatusBadRequest, gin.H{"message": errs.Msg(err)})
		default:
			logger.Errorf("[auth] update password failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
