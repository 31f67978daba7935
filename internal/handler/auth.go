package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolms/internal/auth"
	"schoolms/internal/identity"
)

// Login checks credentials and issues a token pair carrying the user's role.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UserByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate user"})
		return
	}

	tokens, err := h.signer.Issue(user.UserID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := h.users.SaveRefreshToken(c.Request.Context(), user.UserID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "bearer",
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// Refresh rotates a refresh token: the old token is revoked and a fresh pair
// is issued.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.signer.Parse(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if err := h.users.ConsumeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, identity.ErrTokenRevoked) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token no longer valid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.signer.Issue(claims.Subject, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := h.users.SaveRefreshToken(c.Request.Context(), claims.Subject, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "bearer",
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// Verify confirms the caller's token is still valid.
func (h *Handler) Verify(c *gin.Context) {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"auth": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"auth": true, "role": claims.Role})
}
