package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/services"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
	"github.com/vaxtrack/vaxtrack-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testEnv struct {
	router *gin.Engine
	db     *mongo.Database
	rdb    *redis.Client
}

// setupEnv spins up the full router against a throwaway database. Tests are
// skipped when no Mongo instance is available.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping Mongo-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("Mongo not reachable at %s: %v", uri, err)
	}

	db := client.Database(fmt.Sprintf("vaxtrack_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		db.Drop(context.Background())
		client.Disconnect(context.Background())
	})
	require.NoError(t, storage.EnsureIndexes(ctx, db))

	utils.SetJWTSecret("test-secret")
	logger := zerolog.Nop()
	slots := storage.NewSlotStore(db)
	bookingSvc := services.NewBookingService(db, slots, logger, time.UTC)
	shiftSvc := services.NewShiftService(db, slots, logger, time.UTC)
	// Booking/shift scenarios never dial this client; tests that do need
	// Redis additionally gate on TEST_REDIS_ADDR (see requireRedis).
	redisAddr := os.Getenv("TEST_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr, DB: 15})
	t.Cleanup(func() { rdb.Close() })
	otpStore := services.NewOTPStore(rdb)
	notifier := services.NewNotificationService("", logger)

	h := NewHandler(db, bookingSvc, shiftSvc, otpStore, notifier, logger)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	return &testEnv{router: r, db: db, rdb: rdb}
}

// requireRedis skips the test unless a reachable Redis was configured.
func (e *testEnv) requireRedis(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_REDIS_ADDR") == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis-backed test")
	}
	if err := e.rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	t.Cleanup(func() { e.rdb.FlushDB(context.Background()) })
}

// insertUser creates a user document directly and returns it with a valid
// bearer token. Phone is left empty so no SMS goroutine fires.
func (e *testEnv) insertUser(t *testing.T, role string) (models.User, string) {
	t.Helper()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  "Test " + role,
		Email:     fmt.Sprintf("%s-%s@example.com", role, primitive.NewObjectID().Hex()),
		Password:  "not-a-real-hash",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err := e.db.Collection(storage.UsersCollection).InsertOne(context.Background(), user)
	require.NoError(t, err)

	token, err := utils.GenerateJWT(user.ID.Hex(), role)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) insertFacility(t *testing.T, maxPerDay int) models.Facility {
	t.Helper()
	facility := models.Facility{
		ID:                primitive.NewObjectID(),
		Name:              "Trạm Y Tế Phường 1",
		Address:           "1 Nguyễn Trãi",
		Phone:             "0281234567",
		OpenTime:          "07:00",
		CloseTime:         "17:00",
		MaxBookingsPerDay: maxPerDay,
		Status:            "active",
		CreatedAt:         time.Now().UTC(),
	}
	_, err := e.db.Collection(storage.FacilitiesCollection).InsertOne(context.Background(), facility)
	require.NoError(t, err)
	return facility
}

func (e *testEnv) insertVaccine(t *testing.T, quantity int) models.Vaccine {
	t.Helper()
	vaccine := models.Vaccine{
		ID:            primitive.NewObjectID(),
		Name:          "VaxGen B",
		Manufacturer:  "VaxGen",
		Dosage:        "0.5ml",
		DosesRequired: 2,
		Quantity:      quantity,
		Status:        "active",
		CreatedAt:     time.Now().UTC(),
	}
	_, err := e.db.Collection(storage.VaccinesCollection).InsertOne(context.Background(), vaccine)
	require.NoError(t, err)
	return vaccine
}

func (e *testEnv) insertShift(t *testing.T, doctorID primitive.ObjectID, shiftType string, start, end time.Time) models.DoctorShift {
	t.Helper()
	day := start.UTC().Format("2006-01-02")
	shift := models.DoctorShift{
		ID:        primitive.NewObjectID(),
		DoctorID:  doctorID,
		Date:      start.Truncate(24 * time.Hour),
		Day:       day,
		ShiftType: shiftType,
		StartTime: start,
		EndTime:   end,
		Status:    models.ShiftScheduled,
		CreatedAt: time.Now().UTC(),
	}
	_, err := e.db.Collection(storage.ShiftsCollection).InsertOne(context.Background(), shift)
	require.NoError(t, err)
	return shift
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

func (e *testEnv) countDocs(t *testing.T, collection string, filter bson.M) int64 {
	t.Helper()
	n, err := e.db.Collection(collection).CountDocuments(context.Background(), filter)
	require.NoError(t, err)
	return n
}
