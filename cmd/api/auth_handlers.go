package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/httpx"
	"github.com/plsp-store/backend/internal/user"
)

// LoginRequest is the payload for both login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func authenticate(c *gin.Context, users user.Repository) (*user.User, bool) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return nil, false
	}

	u, err := users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			log.Error().Err(err).Msg("login: user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return nil, false
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return nil, false
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return nil, false
	}
	return u, true
}

// loginHandler signs in admin-panel sessions; only ADMIN and STAFF accounts
// are allowed through.
func loginHandler(users user.Repository, issuer *auth.Issuer, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := authenticate(c, users)
		if !ok {
			return
		}
		if !user.IsStaff(u.Role) {
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not allowed to access the admin panel"})
			return
		}
		token, err := issuer.Issue(u.ID, u.Role, ttl)
		if err != nil {
			log.Error().Err(err).Msg("login: token issue failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":       u.ID,
				"email":    u.Email,
				"fullName": u.FullName,
				"role":     u.Role,
			},
		})
	}
}

// mobileLoginHandler signs in any account for the student app, with a
// longer-lived token and student profile fields in the response.
func mobileLoginHandler(users user.Repository, issuer *auth.Issuer, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := authenticate(c, users)
		if !ok {
			return
		}
		token, err := issuer.Issue(u.ID, u.Role, ttl)
		if err != nil {
			log.Error().Err(err).Msg("mobile-login: token issue failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":         u.ID,
				"email":      u.Email,
				"fullName":   u.FullName,
				"role":       u.Role,
				"studentId":  u.StudentID,
				"gradeLevel": u.GradeLevel,
				"section":    u.Section,
			},
		})
	}
}

func meHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := httpx.Claims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			log.Error().Err(err).Msg("me: user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":       u.ID,
			"email":    u.Email,
			"fullName": u.FullName,
			"role":     u.Role,
		})
	}
}
