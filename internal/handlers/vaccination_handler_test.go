package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

func (e *testEnv) insertHistory(t *testing.T, userID, vaccineID primitive.ObjectID) models.VaccinationHistory {
	t.Helper()
	record := models.VaccinationHistory{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		VaccineID:      vaccineID,
		DoctorID:       primitive.NewObjectID(),
		BookingID:      primitive.NewObjectID(),
		FacilityID:     primitive.NewObjectID(),
		BatchNumber:    "LOT-2026-777",
		AdministeredAt: time.Now().UTC(),
		CreatedAt:      time.Now().UTC(),
	}
	_, err := e.db.Collection(storage.VaccinationsCollection).InsertOne(context.Background(), record)
	require.NoError(t, err)
	return record
}

func TestVaccinationStats(t *testing.T) {
	env := setupEnv(t)
	_, adminToken := env.insertUser(t, models.RoleAdmin)
	vaccineA := env.insertVaccine(t, 10)
	vaccineB := env.insertVaccine(t, 10)

	userID := primitive.NewObjectID()
	env.insertHistory(t, userID, vaccineA.ID)
	env.insertHistory(t, primitive.NewObjectID(), vaccineA.ID)
	env.insertHistory(t, primitive.NewObjectID(), vaccineB.ID)

	w := env.do(t, http.MethodGet, "/api/vaccinations/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Total     int64 `json:"total"`
		ByVaccine []struct {
			ID    string `json:"id"`
			Count int64  `json:"count"`
		} `json:"byVaccine"`
		ByMonth []struct {
			ID    string `json:"id"`
			Count int64  `json:"count"`
		} `json:"byMonth"`
	}
	decodeJSON(t, w, &stats)

	assert.EqualValues(t, 3, stats.Total)
	require.Len(t, stats.ByVaccine, 2)
	assert.Equal(t, vaccineA.ID.Hex(), stats.ByVaccine[0].ID)
	assert.EqualValues(t, 2, stats.ByVaccine[0].Count)
	require.Len(t, stats.ByMonth, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01"), stats.ByMonth[0].ID)
}

func TestGetUserVaccinationsScoping(t *testing.T) {
	env := setupEnv(t)
	user, userToken := env.insertUser(t, models.RoleUser)
	_, otherToken := env.insertUser(t, models.RoleUser)
	vaccine := env.insertVaccine(t, 10)
	env.insertHistory(t, user.ID, vaccine.ID)

	w := env.do(t, http.MethodGet, "/api/vaccinations/user/"+user.ID.Hex(), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.VaccinationHistory
	decodeJSON(t, w, &records)
	assert.Len(t, records, 1)

	w = env.do(t, http.MethodGet, "/api/vaccinations/user/"+user.ID.Hex(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVaccinationAdminCRUD(t *testing.T) {
	env := setupEnv(t)
	_, adminToken := env.insertUser(t, models.RoleAdmin)
	vaccine := env.insertVaccine(t, 10)
	record := env.insertHistory(t, primitive.NewObjectID(), vaccine.ID)

	w := env.do(t, http.MethodGet, "/api/vaccinations/"+record.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/api/vaccinations/"+record.ID.Hex(), adminToken,
		map[string]interface{}{"notes": "theo dõi 30 phút, không phản ứng"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/vaccinations/"+record.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/vaccinations/"+record.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
