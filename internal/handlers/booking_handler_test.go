package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
)

func bookingBody(vaccineID, facilityID, date, timeOfDay string) map[string]string {
	return map[string]string{
		"vaccineId":  vaccineID,
		"facilityId": facilityID,
		"date":       date,
		"time":       timeOfDay,
	}
}

func TestCreateBookingRejectsPastDate(t *testing.T) {
	env := setupEnv(t)
	_, token := env.insertUser(t, models.RoleUser)
	facility := env.insertFacility(t, 5)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", token,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), "2020-01-01", "09:00"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingOnePerDay(t *testing.T) {
	env := setupEnv(t)
	_, token := env.insertUser(t, models.RoleUser)
	facility := env.insertFacility(t, 5)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", token,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	// A second active booking on the same calendar day is rejected even at a
	// different time.
	w = env.do(t, http.MethodPost, "/api/bookings", token,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "14:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingFacilityCapacity(t *testing.T) {
	env := setupEnv(t)
	_, tokenA := env.insertUser(t, models.RoleUser)
	_, tokenB := env.insertUser(t, models.RoleUser)
	facility := env.insertFacility(t, 1)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", tokenA,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/bookings", tokenB,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "10:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "đã đủ lịch hẹn")
}

func TestCancelBookingFreesSlot(t *testing.T) {
	env := setupEnv(t)
	_, tokenA := env.insertUser(t, models.RoleUser)
	_, tokenB := env.insertUser(t, models.RoleUser)
	facility := env.insertFacility(t, 1)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", tokenA,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	var booking models.Booking
	decodeJSON(t, w, &booking)

	w = env.do(t, http.MethodDelete, "/api/bookings/"+booking.ID.Hex(), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/bookings", tokenB,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "10:00"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCancelBookingOnlyOwner(t *testing.T) {
	env := setupEnv(t)
	_, tokenA := env.insertUser(t, models.RoleUser)
	_, tokenB := env.insertUser(t, models.RoleUser)
	facility := env.insertFacility(t, 5)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", tokenA,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	var booking models.Booking
	decodeJSON(t, w, &booking)

	w = env.do(t, http.MethodDelete, "/api/bookings/"+booking.ID.Hex(), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateBookingStatusTransitions(t *testing.T) {
	env := setupEnv(t)
	_, userToken := env.insertUser(t, models.RoleUser)
	_, doctorToken := env.insertUser(t, models.RoleDoctor)
	facility := env.insertFacility(t, 5)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", userToken,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	var booking models.Booking
	decodeJSON(t, w, &booking)
	statusPath := "/api/bookings/" + booking.ID.Hex() + "/status"

	// Patients cannot change booking status.
	w = env.do(t, http.MethodPut, statusPath, userToken, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, statusPath, doctorToken, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)

	// Confirmed bookings cannot be confirmed again.
	w = env.do(t, http.MethodPut, statusPath, doctorToken, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, statusPath, doctorToken, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	// Cancelled is terminal.
	w = env.do(t, http.MethodPut, statusPath, doctorToken, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserBookingsScoping(t *testing.T) {
	env := setupEnv(t)
	userA, tokenA := env.insertUser(t, models.RoleUser)
	_, tokenB := env.insertUser(t, models.RoleUser)
	_, adminToken := env.insertUser(t, models.RoleAdmin)
	facility := env.insertFacility(t, 5)
	vaccine := env.insertVaccine(t, 10)

	w := env.do(t, http.MethodPost, "/api/bookings", tokenA,
		bookingBody(vaccine.ID.Hex(), facility.ID.Hex(), tomorrow(), "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	// Owner sees their bookings.
	w = env.do(t, http.MethodGet, "/api/bookings/user/"+userA.ID.Hex(), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []models.Booking
	decodeJSON(t, w, &bookings)
	assert.Len(t, bookings, 1)

	// Another patient may not.
	w = env.do(t, http.MethodGet, "/api/bookings/user/"+userA.ID.Hex(), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin may.
	w = env.do(t, http.MethodGet, "/api/bookings/user/"+userA.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
