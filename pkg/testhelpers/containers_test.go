//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestStoreDB_MigrationsApplied(t *testing.T) {
	storeDB := GetStoreDB(t)

	ctx := context.Background()

	for _, table := range []string{"discovery_projects", "discovery_admins"} {
		var exists bool
		err := storeDB.DB.Pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist", table)
		}
	}
}
