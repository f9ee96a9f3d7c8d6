package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

type facilityRequest struct {
	Name              string `json:"name" binding:"required"`
	Address           string `json:"address" binding:"required"`
	Phone             string `json:"phone" binding:"required"`
	OpenTime          string `json:"openTime" binding:"required"`
	CloseTime         string `json:"closeTime" binding:"required"`
	MaxBookingsPerDay int    `json:"maxBookingsPerDay" binding:"required,min=1"`
	Status            string `json:"status"`
}

func (h *Handler) ListFacilities(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := h.DB.Collection(storage.FacilitiesCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var facilities []models.Facility
	if err = cursor.All(c.Request.Context(), &facilities); err != nil {
		h.fail(c, err)
		return
	}
	if facilities == nil {
		facilities = make([]models.Facility, 0)
	}

	c.JSON(http.StatusOK, facilities)
}

func (h *Handler) GetFacility(c *gin.Context) {
	facilityID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	var facility models.Facility
	err = h.DB.Collection(storage.FacilitiesCollection).FindOne(c.Request.Context(), bson.M{"_id": facilityID}).Decode(&facility)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facility not found"})
		return
	}

	c.JSON(http.StatusOK, facility)
}

func (h *Handler) CreateFacility(c *gin.Context) {
	var req facilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	facility := models.Facility{
		ID:                primitive.NewObjectID(),
		Name:              req.Name,
		Address:           req.Address,
		Phone:             req.Phone,
		OpenTime:          req.OpenTime,
		CloseTime:         req.CloseTime,
		MaxBookingsPerDay: req.MaxBookingsPerDay,
		Status:            status,
		CreatedAt:         time.Now().UTC(),
	}

	if _, err := h.DB.Collection(storage.FacilitiesCollection).InsertOne(c.Request.Context(), facility); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, facility)
}

func (h *Handler) UpdateFacility(c *gin.Context) {
	facilityID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	var req struct {
		Name              *string `json:"name,omitempty"`
		Address           *string `json:"address,omitempty"`
		Phone             *string `json:"phone,omitempty"`
		OpenTime          *string `json:"openTime,omitempty"`
		CloseTime         *string `json:"closeTime,omitempty"`
		MaxBookingsPerDay *int    `json:"maxBookingsPerDay,omitempty"`
		Status            *string `json:"status,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updateFields := bson.M{}
	if req.Name != nil {
		updateFields["name"] = *req.Name
	}
	if req.Address != nil {
		updateFields["address"] = *req.Address
	}
	if req.Phone != nil {
		updateFields["phone"] = *req.Phone
	}
	if req.OpenTime != nil {
		updateFields["openTime"] = *req.OpenTime
	}
	if req.CloseTime != nil {
		updateFields["closeTime"] = *req.CloseTime
	}
	if req.MaxBookingsPerDay != nil {
		if *req.MaxBookingsPerDay < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxBookingsPerDay must be at least 1"})
			return
		}
		updateFields["maxBookingsPerDay"] = *req.MaxBookingsPerDay
	}
	if req.Status != nil {
		updateFields["status"] = *req.Status
	}

	if len(updateFields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	result, err := h.DB.Collection(storage.FacilitiesCollection).UpdateOne(
		c.Request.Context(), bson.M{"_id": facilityID}, bson.M{"$set": updateFields})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facility not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Facility updated successfully"})
}

func (h *Handler) DeleteFacility(c *gin.Context) {
	facilityID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	result, err := h.DB.Collection(storage.FacilitiesCollection).DeleteOne(c.Request.Context(), bson.M{"_id": facilityID})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facility not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Facility deleted successfully"})
}
