package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salesboard/internal/store"
	"salesboard/internal/store/storetest"
)

// Runs only against a live server, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/store/mongo/
func TestMongoStoreConformance(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		coll := fmt.Sprintf("transactions_%d", time.Now().UnixNano())
		s, err := Connect(ctx, uri, "salesboard_test", coll)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.coll.Drop(context.Background()) })
		return s
	})
}
