package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	cfg      *config.Config
	events   *testutil.Recorder
	users    *UserService
	social   *SocialService
	lists    *ListService
	ratings  *RatingService
	reviews  *ReviewService
	messages *MessageService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testConfig()
	events := &testutil.Recorder{}
	return &harness{
		ctx:      context.Background(),
		db:       db,
		cfg:      cfg,
		events:   events,
		users:    NewUserService(db),
		social:   NewSocialService(db, cfg, events),
		lists:    NewListService(db, cfg),
		ratings:  NewRatingService(db, events),
		reviews:  NewReviewService(db, cfg, events),
		messages: NewMessageService(db, cfg, events),
	}
}
