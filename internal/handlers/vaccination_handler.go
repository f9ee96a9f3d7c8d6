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

// ListVaccinations returns history records with optional filters (admin).
func (h *Handler) ListVaccinations(c *gin.Context) {
	filter := bson.M{}
	if userIDQuery := c.Query("userId"); userIDQuery != "" {
		uID, err := primitive.ObjectIDFromHex(userIDQuery)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		filter["userId"] = uID
	}
	if vaccineIDQuery := c.Query("vaccineId"); vaccineIDQuery != "" {
		vID, err := primitive.ObjectIDFromHex(vaccineIDQuery)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vaccine ID"})
			return
		}
		filter["vaccineId"] = vID
	}
	dateFilter := bson.M{}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			dateFilter["$gte"] = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			dateFilter["$lt"] = t.AddDate(0, 0, 1)
		}
	}
	if len(dateFilter) > 0 {
		filter["administeredAt"] = dateFilter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "administeredAt", Value: -1}})
	cursor, err := h.DB.Collection(storage.VaccinationsCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var records []models.VaccinationHistory
	if err = cursor.All(c.Request.Context(), &records); err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = make([]models.VaccinationHistory, 0)
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetVaccination(c *gin.Context) {
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var record models.VaccinationHistory
	err = h.DB.Collection(storage.VaccinationsCollection).FindOne(c.Request.Context(), bson.M{"_id": recordID}).Decode(&record)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// UpdateVaccination allows post-hoc corrections to the observational fields
// only; the identifying references are immutable.
func (h *Handler) UpdateVaccination(c *gin.Context) {
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req struct {
		SideEffects *[]string `json:"sideEffects,omitempty"`
		Notes       *string   `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updateFields := bson.M{}
	if req.SideEffects != nil {
		updateFields["sideEffects"] = *req.SideEffects
	}
	if req.Notes != nil {
		updateFields["notes"] = *req.Notes
	}
	if len(updateFields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	result, err := h.DB.Collection(storage.VaccinationsCollection).UpdateOne(
		c.Request.Context(), bson.M{"_id": recordID}, bson.M{"$set": updateFields})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record updated successfully"})
}

func (h *Handler) DeleteVaccination(c *gin.Context) {
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	result, err := h.DB.Collection(storage.VaccinationsCollection).DeleteOne(c.Request.Context(), bson.M{"_id": recordID})
	if err != nil {
		h.fail(c, err)
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// GetUserVaccinations lets users read their own history; admins anyone's.
func (h *Handler) GetUserVaccinations(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if c.GetString("userRole") != models.RoleAdmin && targetID.Hex() != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "administeredAt", Value: -1}})
	cursor, err := h.DB.Collection(storage.VaccinationsCollection).Find(c.Request.Context(), bson.M{"userId": targetID}, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var records []models.VaccinationHistory
	if err = cursor.All(c.Request.Context(), &records); err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = make([]models.VaccinationHistory, 0)
	}

	c.JSON(http.StatusOK, records)
}

type countBucket struct {
	ID    string `bson:"_id" json:"id"`
	Count int64  `bson:"count" json:"count"`
}

// VaccinationStats aggregates totals for the dashboard charts: per vaccine,
// per facility, and per month over the trailing year.
func (h *Handler) VaccinationStats(c *gin.Context) {
	ctx := c.Request.Context()
	col := h.DB.Collection(storage.VaccinationsCollection)

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		h.fail(c, err)
		return
	}

	byVaccine, err := h.aggregateCounts(c, bson.A{
		bson.M{"$group": bson.M{"_id": bson.M{"$toString": "$vaccineId"}, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	byFacility, err := h.aggregateCounts(c, bson.A{
		bson.M{"$group": bson.M{"_id": bson.M{"$toString": "$facilityId"}, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	yearAgo := time.Now().UTC().AddDate(-1, 0, 0)
	byMonth, err := h.aggregateCounts(c, bson.A{
		bson.M{"$match": bson.M{"administeredAt": bson.M{"$gte": yearAgo}}},
		bson.M{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$administeredAt"}},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      total,
		"byVaccine":  byVaccine,
		"byFacility": byFacility,
		"byMonth":    byMonth,
	})
}

func (h *Handler) aggregateCounts(c *gin.Context, pipeline bson.A) ([]countBucket, error) {
	ctx := c.Request.Context()
	cursor, err := h.DB.Collection(storage.VaccinationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []countBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = make([]countBucket, 0)
	}
	return buckets, nil
}
