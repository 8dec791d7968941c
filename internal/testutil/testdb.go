// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"companion-counselling-be/internal/model"
	"companion-counselling-be/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLite returns a migrated in-memory database private to the test.
// A single connection serializes transactions the way row locks would.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_time_format=sqlite&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func SeedUsers(t testing.TB, db *gorm.DB, ids ...uint) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, db.Create(&model.User{ID: id}).Error)
	}
}

func SeedConsultant(t testing.TB, db *gorm.DB, id uint, first, last, email string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Consultant{ID: id, FirstName: first, LastName: last, Email: email}).Error)
}
