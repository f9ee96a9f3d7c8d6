package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newTestDB(t *testing.T) *mongo.Database {
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
	return db
}

func TestSlotStoreClaimUpToMax(t *testing.T) {
	db := newTestDB(t)
	slots := NewSlotStore(db)
	ctx := context.Background()

	id := BookingSlotID("abc", "2030-01-02")
	for i := 0; i < 3; i++ {
		require.NoError(t, slots.Claim(ctx, id, 3))
	}
	assert.ErrorIs(t, slots.Claim(ctx, id, 3), ErrSlotFull)
}

func TestSlotStoreReleaseFreesCapacity(t *testing.T) {
	db := newTestDB(t)
	slots := NewSlotStore(db)
	ctx := context.Background()

	id := ShiftSlotID("2030-01-02", "morning")
	require.NoError(t, slots.Claim(ctx, id, 1))
	assert.ErrorIs(t, slots.Claim(ctx, id, 1), ErrSlotFull)

	require.NoError(t, slots.Release(ctx, id))
	assert.NoError(t, slots.Claim(ctx, id, 1))
}

func TestSlotStoreZeroMax(t *testing.T) {
	db := newTestDB(t)
	slots := NewSlotStore(db)

	assert.ErrorIs(t, slots.Claim(context.Background(), "booking:x:2030-01-02", 0), ErrSlotFull)
}

func TestSlotStoreConcurrentClaims(t *testing.T) {
	db := newTestDB(t)
	slots := NewSlotStore(db)
	ctx := context.Background()

	const max = 5
	const attempts = 20
	id := BookingSlotID("race", "2030-01-02")

	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			results <- slots.Claim(ctx, id, max)
		}()
	}

	granted := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			granted++
		} else {
			require.ErrorIs(t, err, ErrSlotFull)
		}
	}
	assert.Equal(t, max, granted)
}
