package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

func (h *Handler) Register(c *gin.Context) {
	var request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	if len(request.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	existing, err := h.users.GetByLogin(c.Request.Context(), request.Email)
	if err == nil {
		// An unverified placeholder account created by an invite may be
		// claimed by registering with its email.
		if !existing.IsVerified {
			hashed, hashErr := h.hasher.Hash(request.Password)
			if hashErr != nil {
				respondError(c, hashErr)
				return
			}
			if err := h.users.SetPassword(c.Request.Context(), existing.ID, hashed); err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "id": existing.ID})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		respondError(c, err)
		return
	}

	hashed, err := h.hasher.Hash(request.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	id, err := h.users.Create(c.Request.Context(), request.Email, hashed, request.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "id": id})
}

func (h *Handler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.users.GetByLogin(c.Request.Context(), credentials.Email)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(c, domain.ErrInvalidCredential)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	// An unverified placeholder has no usable credential until claimed.
	if !user.IsVerified || !h.hasher.Verify(credentials.Password, user.HashedPassword) {
		respondError(c, domain.ErrInvalidCredential)
		return
	}

	token, err := h.issuer.IssueSession(user.ID, user.Login)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"access_token": token, "token_type": "bearer"})
}

// SendResetCode issues a recovery code and mails it. A dispatch failure
// consumes the just-issued code so no orphaned code stays live.
func (h *Handler) SendResetCode(c *gin.Context) {
	var request struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	user, err := h.users.GetByLogin(c.Request.Context(), request.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	code, err := h.codes.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recovery.SendRecoveryCode(c.Request.Context(), user.Login, code); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("recovery code dispatch failed")
		if consumeErr := h.codes.Consume(c.Request.Context(), user.ID); consumeErr != nil {
			log.WithError(consumeErr).Warn("failed to discard undelivered reset code")
		}
		respondError(c, domain.ErrNotificationFailed)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Code sent to " + request.Email})
}

// VerifyResetCode exchanges a valid code for a session token. The code is
// consumed only after token issuance succeeds.
func (h *Handler) VerifyResetCode(c *gin.Context) {
	code := c.Param("code")

	userID, err := h.codes.Verify(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issuer.IssueSession(user.ID, user.Login)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.codes.Consume(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"access_token": token, "token_type": "bearer"})
}

// ResetPassword changes the password of the session's user. Paired with
// VerifyResetCode it completes the recovery flow without an existing login.
func (h *Handler) ResetPassword(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var request struct {
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password and confirmation are required"})
		return
	}
	if request.NewPassword != request.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords don't match"})
		return
	}
	if len(request.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	hashed, err := h.hasher.Hash(request.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), userID, hashed); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Password successfully changed"})
}
