package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/services"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

type shiftResponse struct {
	models.DoctorShift
	DisplayStatus string `json:"displayStatus"`
}

// ListShifts returns the authenticated doctor's shifts, optionally limited to
// a day range (?from=YYYY-MM-DD&to=YYYY-MM-DD).
func (h *Handler) ListShifts(c *gin.Context) {
	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filter := bson.M{"doctorId": doctorID}
	dayFilter := bson.M{}
	if from := c.Query("from"); from != "" {
		dayFilter["$gte"] = from
	}
	if to := c.Query("to"); to != "" {
		dayFilter["$lte"] = to
	}
	if len(dayFilter) > 0 {
		filter["day"] = dayFilter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := h.DB.Collection(storage.ShiftsCollection).Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cursor.Close(c.Request.Context())

	var shifts []models.DoctorShift
	if err = cursor.All(c.Request.Context(), &shifts); err != nil {
		h.fail(c, err)
		return
	}

	out := make([]shiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, shiftResponse{
			DoctorShift:   shifts[i],
			DisplayStatus: h.Shifts.DisplayStatus(&shifts[i]),
		})
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) RegisterShift(c *gin.Context) {
	var req struct {
		Date      string `json:"date" binding:"required"`
		ShiftType string `json:"shiftType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	shift, err := h.Shifts.Register(c.Request.Context(), doctorID, req.Date, req.ShiftType)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, shift)
}

func (h *Handler) CancelShift(c *gin.Context) {
	shiftID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shift ID"})
		return
	}

	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.Shifts.Cancel(c.Request.Context(), doctorID, shiftID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shift cancelled successfully"})
}

// ShiftBookings lists the pending/confirmed bookings on a given day whose
// time falls inside one of the doctor's shift windows. Shifts are matched by
// window overlap with the day, not by registration day, so a night shift
// registered the day before still picks up its 00:00-06:00 bookings.
func (h *Handler) ShiftBookings(c *gin.Context) {
	day := c.Query("date")
	if day == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	dayStart, err := services.ParseDay(day, h.Shifts.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	shiftCursor, err := h.DB.Collection(storage.ShiftsCollection).Find(c.Request.Context(), bson.M{
		"doctorId":  doctorID,
		"status":    bson.M{"$ne": models.ShiftCancelled},
		"startTime": bson.M{"$lt": dayEnd},
		"endTime":   bson.M{"$gt": dayStart},
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	defer shiftCursor.Close(c.Request.Context())

	var shifts []models.DoctorShift
	if err = shiftCursor.All(c.Request.Context(), &shifts); err != nil {
		h.fail(c, err)
		return
	}
	if len(shifts) == 0 {
		c.JSON(http.StatusOK, make([]models.Booking, 0))
		return
	}

	bookingCursor, err := h.DB.Collection(storage.BookingsCollection).Find(c.Request.Context(), bson.M{
		"day":    day,
		"status": bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
	}, options.Find().SetSort(bson.D{{Key: "time", Value: 1}}))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer bookingCursor.Close(c.Request.Context())

	var bookings []models.Booking
	if err = bookingCursor.All(c.Request.Context(), &bookings); err != nil {
		h.fail(c, err)
		return
	}

	covered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		at, err := services.CombineDayTime(b.Date.In(h.Shifts.Location()), b.Time)
		if err != nil {
			continue
		}
		for i := range shifts {
			if shifts[i].Covers(at) {
				covered = append(covered, b)
				break
			}
		}
	}

	c.JSON(http.StatusOK, covered)
}

type completeBookingRequest struct {
	BatchNumber string   `json:"batchNumber" binding:"required"`
	SideEffects []string `json:"sideEffects"`
	Notes       string   `json:"notes"`
}

// CompleteBooking marks a booking completed and writes the vaccination
// history record. The doctor must be inside one of their shift windows and
// the booking must fall inside that same window.
func (h *Handler) CompleteBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req completeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	shift, err := h.Shifts.CoveringShift(c.Request.Context(), doctorID)
	if err != nil {
		h.fail(c, err)
		return
	}

	bookingsCol := h.DB.Collection(storage.BookingsCollection)
	var booking models.Booking
	if err := bookingsCol.FindOne(c.Request.Context(), bson.M{"_id": bookingID}).Decode(&booking); err != nil {
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

	at, err := services.CombineDayTime(booking.Date.In(h.Shifts.Location()), booking.Time)
	if err != nil || !shift.Covers(at) {
		h.fail(c, services.ErrOutsideShift)
		return
	}

	_, err = bookingsCol.UpdateOne(c.Request.Context(),
		bson.M{"_id": booking.ID},
		bson.M{"$set": bson.M{"status": models.BookingCompleted}})
	if err != nil {
		h.fail(c, err)
		return
	}

	history := models.VaccinationHistory{
		ID:             primitive.NewObjectID(),
		UserID:         booking.UserID,
		VaccineID:      booking.VaccineID,
		DoctorID:       doctorID,
		BookingID:      booking.ID,
		FacilityID:     booking.FacilityID,
		BatchNumber:    req.BatchNumber,
		AdministeredAt: time.Now().UTC(),
		SideEffects:    req.SideEffects,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := h.DB.Collection(storage.VaccinationsCollection).InsertOne(c.Request.Context(), history); err != nil {
		// Booking is already completed at this point; log the orphan for
		// reconciliation rather than guessing at a rollback.
		h.Log.Error().Err(err).Str("booking", booking.ID.Hex()).Msg("completed booking has no history record")
		h.fail(c, err)
		return
	}

	_, err = h.DB.Collection(storage.VaccinesCollection).UpdateOne(c.Request.Context(),
		bson.M{"_id": booking.VaccineID, "quantity": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"quantity": -1}})
	if err != nil {
		h.Log.Error().Err(err).Str("vaccine", booking.VaccineID.Hex()).Msg("failed to decrement vaccine stock")
	}

	c.JSON(http.StatusOK, history)
}
