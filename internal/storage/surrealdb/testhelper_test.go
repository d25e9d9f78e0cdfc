package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	tcommon "github.com/bobmcallan/fundboard/tests/common"
	surreal "github.com/surrealdb/surrealdb.go"
)

// testConfig points at the shared SurrealDB container with a unique
// database name per test. Subtest names contain "/", which SurrealDB
// rejects in database names.
func testConfig(t *testing.T) common.SurrealConfig {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	return common.SurrealConfig{
		Address:   sc.Address(),
		Namespace: "fundboard_test",
		Database:  fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000),
		Username:  "root",
		Password:  "root",
	}
}

// testDB returns a connected session with the internal tables defined.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	db, err := Connect(context.Background(), testLogger(), testConfig(t))
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
