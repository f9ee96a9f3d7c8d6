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

type vaccineRequest struct {
	Name          string   `json:"name" binding:"required"`
	Manufacturer  string   `json:"manufacturer" binding:"required"`
	Description   string   `json:"description"`
	Dosage        string   `json:"dosage" binding:"required"`
	DosesRequired int      `json:"dosesRequired" binding:"required,min=1"`
	Quantity      int      `json:"quantity" binding:"min=0"`
	Price         float64  `json:"price" binding:"min=0"`
	SideEffects   []string `json:"sideEffects"`
	Status        string   `json:"status"`
}

func (h *Handler) ListVaccines(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := h.DB.Collection(storage.VaccinesCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var vaccines []models.Vaccine
	if err = cursor.All(c.Request.Context(), &vaccines); err != nil {
		h.fail(c, err)
		return
	}
	if vaccines == nil {
		vaccines = make([]models.Vaccine, 0)
	}

	c.JSON(http.StatusOK, vaccines)
}

func (h *Handler) GetVaccine(c *gin.Context) {
	vaccineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vaccine ID"})
		return
	}

	var vaccine models.Vaccine
	err = h.DB.Collection(storage.VaccinesCollection).FindOne(c.Request.Context(), bson.M{"_id": vaccineID}).Decode(&vaccine)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vaccine not found"})
		return
	}

	c.JSON(http.StatusOK, vaccine)
}

func (h *Handler) CreateVaccine(c *gin.Context) {
	var req vaccineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	vaccine := models.Vaccine{
		ID:            primitive.NewObjectID(),
		Name:          req.Name,
		Manufacturer:  req.Manufacturer,
		Description:   req.Description,
		Dosage:        req.Dosage,
		DosesRequired: req.DosesRequired,
		Quantity:      req.Quantity,
		Price:         req.Price,
		SideEffects:   req.SideEffects,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := h.DB.Collection(storage.VaccinesCollection).InsertOne(c.Request.Context(), vaccine); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, vaccine)
}

func (h *Handler) UpdateVaccine(c *gin.Context) {
	vaccineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vaccine ID"})
		return
	}

	var req struct {
		Name          *string   `json:"name,omitempty"`
		Manufacturer  *string   `json:"manufacturer,omitempty"`
		Description   *string   `json:"description,omitempty"`
		Dosage        *string   `json:"dosage,omitempty"`
		DosesRequired *int      `json:"dosesRequired,omitempty"`
		Quantity      *int      `json:"quantity,omitempty"`
		Price         *float64  `json:"price,omitempty"`
		SideEffects   *[]string `json:"sideEffects,omitempty"`
		Status        *string   `json:"status,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updateFields := bson.M{}
	if req.Name != nil {
		updateFields["name"] = *req.Name
	}
	if req.Manufacturer != nil {
		updateFields["manufacturer"] = *req.Manufacturer
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Dosage != nil {
		updateFields["dosage"] = *req.Dosage
	}
	if req.DosesRequired != nil {
		updateFields["dosesRequired"] = *req.DosesRequired
	}
	if req.Quantity != nil {
		updateFields["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		updateFields["price"] = *req.Price
	}
	if req.SideEffects != nil {
		updateFields["sideEffects"] = *req.SideEffects
	}
	if req.Status != nil {
		updateFields["status"] = *req.Status
	}

	if len(updateFields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	result, err := h.DB.Collection(storage.VaccinesCollection).UpdateOne(
		c.Request.Context(), bson.M{"_id": vaccineID}, bson.M{"$set": updateFields})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vaccine not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vaccine updated successfully"})
}

func (h *Handler) DeleteVaccine(c *gin.Context) {
	vaccineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vaccine ID"})
		return
	}

	result, err := h.DB.Collection(storage.VaccinesCollection).DeleteOne(c.Request.Context(), bson.M{"_id": vaccineID})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vaccine not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vaccine deleted successfully"})
}
