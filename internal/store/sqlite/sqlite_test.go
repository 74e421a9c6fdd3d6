package sqlite

import (
	"testing"

	"github.com/innometrics/innometrics-backend/internal/store"
	"github.com/innometrics/innometrics-backend/internal/store/storetest"
)

func TestSqliteStoreCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(":memory:")
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		return s
	})
}
