package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/services"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
	"github.com/vaxtrack/vaxtrack-api/internal/utils"
)

type RegisterUserRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role"`
	Phone       string `json:"phone" binding:"required"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Admin accounts are only created by other admins through /api/users.
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleDoctor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := models.User{
		ID:          primitive.NewObjectID(),
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    hashedPassword,
		Role:        role,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		CreatedAt:   time.Now().UTC(),
	}

	collection := h.DB.Collection(storage.UsersCollection)
	_, err = collection.InsertOne(c.Request.Context(), user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	collection := h.DB.Collection(storage.UsersCollection)
	err := collection.FindOne(c.Request.Context(), bson.M{"email": loginReq.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Don't send password back
	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// ForgotPassword issues an OTP for the account. The response is identical
// whether or not the email exists, to avoid account enumeration.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	err := h.DB.Collection(storage.UsersCollection).FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(&user)
	if err == nil {
		code, issueErr := h.OTP.IssueOTP(c.Request.Context(), user.Email)
		if issueErr != nil {
			h.fail(c, issueErr)
			return
		}
		h.Notifier.SendOTPSMS(&user, code)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a verification code has been sent"})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.OTP.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrCodeInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resetToken": token})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		ResetToken  string `json:"resetToken" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := h.OTP.ConsumeResetToken(c.Request.Context(), req.ResetToken)
	if err != nil {
		if errors.Is(err, services.ErrCodeInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
			return
		}
		h.fail(c, err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.DB.Collection(storage.UsersCollection).UpdateOne(
		c.Request.Context(),
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": hashedPassword}},
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
