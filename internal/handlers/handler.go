package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaxtrack/vaxtrack-api/internal/services"
)

type Handler struct {
	DB       *mongo.Database
	Bookings *services.BookingService
	Shifts   *services.ShiftService
	OTP      *services.OTPStore
	Notifier *services.NotificationService
	Log      zerolog.Logger
}

func NewHandler(
	db *mongo.Database,
	bookings *services.BookingService,
	shifts *services.ShiftService,
	otp *services.OTPStore,
	notifier *services.NotificationService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		DB:       db,
		Bookings: bookings,
		Shifts:   shifts,
		OTP:      otp,
		Notifier: notifier,
		Log:      log,
	}
}

// currentUserID reads the authenticated user's id set by the auth middleware.
func (h *Handler) currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idHex := c.GetString("userID")
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// fail maps service validation errors to their status and hides everything
// else behind a generic 500; details go to the log only.
func (h *Handler) fail(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Status, gin.H{"error": svcErr.Message})
		return
	}
	h.Log.Error().Err(err).
		Str("request_id", c.GetString("requestID")).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
