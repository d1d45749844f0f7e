package share

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Atharva2604/Kuro/models"
)

// newStoreDB opens a private in-memory database per test. A single connection
// keeps every statement on the same sqlite instance.
func newStoreDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.ShareLink{}))
	return db
}

func seedLink(t *testing.T, store Store, ownerID string, createdAt time.Time) *models.ShareLink {
	t.Helper()
	token, err := generateToken()
	require.NoError(t, err)
	link := &models.ShareLink{
		Token:     token,
		FileID:    uuid.NewString(),
		FileName:  "notes.txt",
		OwnerID:   ownerID,
		CreatedAt: createdAt,
	}
	require.NoError(t, store.Create(context.Background(), link))
	return link
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(newStoreDB(t))
	link := seedLink(t, store, "u1", time.Now())
	require.NotEmpty(t, link.ID, "create assigns the primary key")

	got, err := store.GetByID(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Token, got.Token)
	assert.Equal(t, "notes.txt", got.FileName)

	got, err = store.GetByToken(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
}

func TestStoreMissingRows(t *testing.T) {
	store := NewStore(newStoreDB(t))
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.IncrementAccessCount(ctx, "no-such-token"), ErrNotFound)
}

func TestStoreRejectsDuplicateToken(t *testing.T) {
	store := NewStore(newStoreDB(t))
	link := seedLink(t, store, "u1", time.Now())

	dup := &models.ShareLink{
		Token:    link.Token,
		FileID:   uuid.NewString(),
		FileName: "other.txt",
		OwnerID:  "u1",
	}
	assert.ErrorIs(t, store.Create(context.Background(), dup), ErrConflict)
}

func TestStoreListByOwnerNewestFirst(t *testing.T) {
	store := NewStore(newStoreDB(t))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest := seedLink(t, store, "u1", base)
	middle := seedLink(t, store, "u1", base.Add(time.Minute))
	newest := seedLink(t, store, "u1", base.Add(2*time.Minute))
	seedLink(t, store, "u2", base.Add(3*time.Minute))

	links, err := store.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, newest.ID, links[0].ID)
	assert.Equal(t, middle.ID, links[1].ID)
	assert.Equal(t, oldest.ID, links[2].ID)

	links, err = store.ListByOwner(context.Background(), "u3")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestStoreDeleteGuards(t *testing.T) {
	store := NewStore(newStoreDB(t))
	ctx := context.Background()

	linkOwner := Principal{UserID: "u1", Role: models.RoleUser}
	outsider := Principal{UserID: "u2", Role: models.RoleUser}
	operator := Principal{UserID: "u3", Role: models.RoleAdmin}

	link := seedLink(t, store, "u1", time.Now())
	assert.ErrorIs(t, store.Delete(ctx, link.ID, outsider), ErrForbidden)
	_, err := store.GetByID(ctx, link.ID)
	require.NoError(t, err, "a refused delete leaves the row in place")

	require.NoError(t, store.Delete(ctx, link.ID, linkOwner))
	_, err = store.GetByID(ctx, link.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := seedLink(t, store, "u1", time.Now())
	require.NoError(t, store.Delete(ctx, other.ID, operator), "admins may delete anyone's link")

	assert.ErrorIs(t, store.Delete(ctx, uuid.NewString(), linkOwner), ErrNotFound)
}

func TestStoreIncrementIsAtomic(t *testing.T) {
	store := NewStore(newStoreDB(t))
	link := seedLink(t, store, "u1", time.Now())

	const redemptions = 25
	var wg sync.WaitGroup
	errs := make(chan error, redemptions)
	for i := 0; i < redemptions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.IncrementAccessCount(context.Background(), link.Token)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.GetByToken(context.Background(), link.Token)
	require.NoError(t, err)
	assert.EqualValues(t, redemptions, got.AccessCount, "no increment is lost under concurrency")
}
