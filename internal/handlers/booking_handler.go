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
	"github.com/vaxtrack/vaxtrack-api/internal/services"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

type createBookingRequest struct {
	VaccineID  string `json:"vaccineId" binding:"required"`
	FacilityID string `json:"facilityId" binding:"required"`
	Date       string `json:"date" binding:"required"` // "2006-01-02"
	Time       string `json:"time" binding:"required"` // "HH:MM"
	Notes      string `json:"notes"`
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	vaccineID, err := primitive.ObjectIDFromHex(req.VaccineID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vaccine ID"})
		return
	}
	facilityID, err := primitive.ObjectIDFromHex(req.FacilityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	booking, err := h.Bookings.Create(c.Request.Context(), services.CreateBookingInput{
		UserID:     userID,
		VaccineID:  vaccineID,
		FacilityID: facilityID,
		Day:        req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	// Confirmation SMS; lookup failures only cost the notification.
	var user models.User
	var vaccine models.Vaccine
	if err := h.DB.Collection(storage.UsersCollection).FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err == nil {
		if err := h.DB.Collection(storage.VaccinesCollection).FindOne(c.Request.Context(), bson.M{"_id": vaccineID}).Decode(&vaccine); err == nil {
			h.Notifier.SendBookingConfirmationSMS(&user, booking, vaccine.Name)
		}
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings returns all bookings with optional filters (admin view).
func (h *Handler) ListBookings(c *gin.Context) {
	filter := bson.M{}
	if day := c.Query("date"); day != "" {
		filter["day"] = day
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if facilityIDQuery := c.Query("facilityId"); facilityIDQuery != "" {
		fID, err := primitive.ObjectIDFromHex(facilityIDQuery)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
			return
		}
		filter["facilityId"] = fID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: 1}})
	cursor, err := h.DB.Collection(storage.BookingsCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var bookings []models.Booking
	if err = cursor.All(c.Request.Context(), &bookings); err != nil {
		h.fail(c, err)
		return
	}
	if bookings == nil {
		bookings = make([]models.Booking, 0)
	}

	c.JSON(http.StatusOK, bookings)
}

// GetUserBookings returns the bookings of one user. Regular users may only
// read their own; doctors and admins may read anyone's.
func (h *Handler) GetUserBookings(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if c.GetString("userRole") == models.RoleUser && targetID.Hex() != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	filter := bson.M{"userId": targetID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := h.DB.Collection(storage.BookingsCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var bookings []models.Booking
	if err = cursor.All(c.Request.Context(), &bookings); err != nil {
		h.fail(c, err)
		return
	}
	if bookings == nil {
		bookings = make([]models.Booking, 0)
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateBookingStatus moves a booking between non-terminal states
// (doctor/admin). Completion goes through the doctor completion endpoint,
// which also writes the vaccination history.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status != models.BookingConfirmed && req.Status != models.BookingCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be confirmed or cancelled"})
		return
	}

	col := h.DB.Collection(storage.BookingsCollection)
	var booking models.Booking
	if err := col.FindOne(c.Request.Context(), bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.fail(c, err)
		return
	}
	if booking.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is already completed or cancelled"})
		return
	}
	if req.Status == models.BookingConfirmed && booking.Status != models.BookingPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending bookings can be confirmed"})
		return
	}

	_, err = col.UpdateOne(c.Request.Context(), bson.M{"_id": bookingID}, bson.M{"$set": bson.M{"status": req.Status}})
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.Status == models.BookingCancelled {
		h.Bookings.ReleaseSlot(c.Request.Context(), &booking)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking status updated successfully"})
}

// CancelBooking lets the booking owner (or an admin) cancel a non-terminal
// booking, freeing the facility slot for that day.
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var booking models.Booking
	err = h.DB.Collection(storage.BookingsCollection).FindOne(c.Request.Context(), bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.fail(c, err)
		return
	}

	isAdmin := c.GetString("userRole") == models.RoleAdmin
	if !isAdmin && booking.UserID.Hex() != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	if err := h.Bookings.Cancel(c.Request.Context(), &booking, isAdmin); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}
