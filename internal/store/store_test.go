package store_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/dbpool"
	"github.com/rootlinehq/rootline/internal/models"
	"github.com/rootlinehq/rootline/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

// setupTestBase returns a store Base plus a fresh test user id.
func setupTestBase(t *testing.T) (store.Base, uuid.UUID) {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}

	apiKey := "test-key-" + uuid.New().String()
	hash := sha256.Sum256([]byte(apiKey))

	var userID uuid.UUID

	err := env.pool.QueryRow(context.Background(),
		"INSERT INTO users (api_key_hash) VALUES ($1) RETURNING id",
		hex.EncodeToString(hash[:])).Scan(&userID)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	return base, userID
}

// createPerson inserts a person owned by ownerID.
func createPerson(t *testing.T, base store.Base, ownerID uuid.UUID, given, sex string) *models.Person {
	t.Helper()

	ps := store.NewPersonStore(base)

	p, err := ps.CreatePerson(context.Background(), models.Person{
		OwnerID:   ownerID,
		GivenName: given,
		Surname:   "Test",
		Sex:       sex,
	})
	if err != nil {
		t.Fatalf("creating person %s: %v", given, err)
	}

	return p
}

// link inserts a directed relationship edge.
func link(t *testing.T, base store.Base, person, relative uuid.UUID, kind string) {
	t.Helper()

	ps := store.NewPersonStore(base)

	err := ps.CreateRelationship(context.Background(), models.Relationship{
		PersonID:   person,
		RelativeID: relative,
		Kind:       kind,
	})
	if err != nil {
		t.Fatalf("linking %s: %v", kind, err)
	}
}

// marry inserts both directions of a spousal link.
func marry(t *testing.T, base store.Base, a, b uuid.UUID) {
	t.Helper()

	link(t, base, a, b, models.RelSpouse)
	link(t, base, b, a, models.RelSpouse)
}
