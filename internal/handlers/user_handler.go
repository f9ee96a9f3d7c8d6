package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

// --- ADMIN USER MANAGEMENT ---

func (h *Handler) ListUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection(storage.UsersCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var users []models.User
	if err = cursor.All(c.Request.Context(), &users); err != nil {
		h.fail(c, err)
		return
	}
	if users == nil {
		users = make([]models.User, 0)
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	err = h.DB.Collection(storage.UsersCollection).FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	FullName    *string `json:"fullName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Address     *string `json:"address,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// UpdateUser lets an admin edit any profile, including the role.
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updateFields := bson.M{}
	if req.FullName != nil {
		updateFields["fullName"] = *req.FullName
	}
	if req.Phone != nil {
		updateFields["phone"] = *req.Phone
	}
	if req.DateOfBirth != nil {
		updateFields["dateOfBirth"] = *req.DateOfBirth
	}
	if req.Address != nil {
		updateFields["address"] = *req.Address
	}
	if req.Role != nil {
		switch *req.Role {
		case models.RoleAdmin, models.RoleDoctor, models.RoleUser:
			updateFields["role"] = *req.Role
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
	}

	if len(updateFields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	result, err := h.DB.Collection(storage.UsersCollection).UpdateOne(
		c.Request.Context(), bson.M{"_id": userID}, bson.M{"$set": updateFields})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if userID.Hex() == c.GetString("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	result, err := h.DB.Collection(storage.UsersCollection).DeleteOne(c.Request.Context(), bson.M{"_id": userID})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// --- SELF PROFILE ---

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	err := h.DB.Collection(storage.UsersCollection).FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser allows a user to update their own profile. Role is
// deliberately not updatable here.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updateFields := bson.M{}
	if req.FullName != nil {
		updateFields["fullName"] = *req.FullName
	}
	if req.Phone != nil {
		updateFields["phone"] = *req.Phone
	}
	if req.DateOfBirth != nil {
		updateFields["dateOfBirth"] = *req.DateOfBirth
	}
	if req.Address != nil {
		updateFields["address"] = *req.Address
	}

	if len(updateFields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	result, err := h.DB.Collection(storage.UsersCollection).UpdateOne(
		c.Request.Context(), bson.M{"_id": userID}, bson.M{"$set": updateFields})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
