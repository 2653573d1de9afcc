// Package dbtest opens isolated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// New returns a migrated in-memory sqlite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", nameReplacer.Replace(t.Name()))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func User(t testing.TB, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Tag(t testing.TB, db *gorm.DB, name, color, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func Ingredient(t testing.TB, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// Count returns the number of rows in table matching the optional condition.
func Count(t testing.TB, db *gorm.DB, table string, where ...any) int64 {
	t.Helper()
	var n int64
	q := db.Table(table)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
