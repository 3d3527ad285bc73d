package forum

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Category{},
		&models.Topic{},
		&models.Comment{},
		&models.Vote{},
		&models.Report{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

// seedClock hands out strictly increasing timestamps so creation order is
// stable under the created_at sort.
var seedClock = struct {
	sync.Mutex
	now time.Time
}{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

func nextTime() time.Time {
	seedClock.Lock()
	defer seedClock.Unlock()
	seedClock.now = seedClock.now.Add(time.Second)
	return seedClock.now
}

func seedUser(t *testing.T, gdb *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      username,
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: nextTime(),
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedCategory(t *testing.T, gdb *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      name,
		CreatedAt: nextTime(),
	}
	if err := gdb.Create(category).Error; err != nil {
		t.Fatalf("failed to seed category %s: %v", name, err)
	}
	return category
}

func seedTopic(t *testing.T, gdb *gorm.DB, author *models.User, category *models.Category, title string) *models.Topic {
	t.Helper()
	topic := &models.Topic{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    "content of " + title,
		AuthorID:   author.ID,
		CategoryID: category.ID,
		CreatedAt:  nextTime(),
	}
	if err := gdb.Create(topic).Error; err != nil {
		t.Fatalf("failed to seed topic %s: %v", title, err)
	}
	return topic
}

func seedComment(t *testing.T, gdb *gorm.DB, author *models.User, topic *models.Topic, parentID *string, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		AuthorID:  author.ID,
		TopicID:   topic.ID,
		ParentID:  parentID,
		CreatedAt: nextTime(),
	}
	if err := gdb.Create(comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}

func seedSession(t *testing.T, gdb *gorm.DB, user *models.User) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: nextTime(),
	}
	if err := gdb.Create(session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func ident(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

// recordingBus captures fan-out for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBus) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (b *recordingBus) last(t *testing.T) publishedEvent {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		t.Fatal("expected at least one published event")
	}
	return b.events[len(b.events)-1]
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
