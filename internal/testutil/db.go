// Package testutil holds fixtures shared by package tests that need a real
// relational store.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func CreateList(t *testing.T, db *gorm.DB, owner uuid.UUID, visibility models.Visibility) *models.List {
	t.Helper()
	list := &models.List{UserID: owner, Title: "list", Visibility: visibility}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("create list: %v", err)
	}
	return list
}

func Follow(t *testing.T, db *gorm.DB, follower, followee uuid.UUID) {
	t.Helper()
	if err := db.Create(&models.Follow{FollowerID: follower, FolloweeID: followee}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
}

func Block(t *testing.T, db *gorm.DB, blocker, blocked uuid.UUID) {
	t.Helper()
	if err := db.Create(&models.Block{BlockerID: blocker, BlockedID: blocked}).Error; err != nil {
		t.Fatalf("create block: %v", err)
	}
}

// Clock hands out strictly increasing timestamps so newest-first ordering is
// deterministic in tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
