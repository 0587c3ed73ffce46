package gallery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/imagefeed/database"
	"github.com/kbukum/imagefeed/database/migration"
	"github.com/kbukum/imagefeed/errors"
	"github.com/kbukum/imagefeed/util"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.New(context.Background(), database.Config{
		Enabled:    true,
		Driver:     database.DriverSQLite,
		DSN:        filepath.Join(t.TempDir(), "gallery.db"),
		MaxRetries: 1,
	}, quietLogger())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.GormDB.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	version, err := migration.Up(sqlDB, database.DriverSQLite, Migrations())
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if version != 1 {
		t.Fatalf("migration version = %d", version)
	}
	return NewGormStore(db)
}

func TestGormStore_AddListCount(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 9, 13, 30, 15, 0, time.UTC)

	// IDs sort opposite to insertion so ordering must come from seq.
	inputs := []Image{
		{ID: "c", URL: "http://x/1.png", Message: util.Ptr("first"), Date: base},
		{ID: "b", URL: "http://x/2.png", Date: base.Add(time.Second)},
		{ID: "a", URL: "http://x/3.png", Message: util.Ptr("third"), Date: base.Add(2 * time.Second)},
	}
	for _, img := range inputs {
		if err := store.Add(ctx, img); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	images, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, img := range images {
		want := inputs[i]
		if img.ID != want.ID || img.URL != want.URL {
			t.Errorf("position %d: %+v, want %+v", i, img, want)
		}
		if !img.Date.Equal(want.Date) {
			t.Errorf("position %d date: %v, want %v", i, img.Date, want.Date)
		}
		if (img.Message == nil) != (want.Message == nil) {
			t.Errorf("position %d message: %v, want %v", i, img.Message, want.Message)
		}
	}
}

func TestGormStore_DuplicateID(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	img := Image{ID: "same", URL: "http://x/a.png", Date: time.Now()}
	if err := store.Add(ctx, img); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := store.Add(ctx, img)
	if !errors.IsAppError(err) {
		t.Fatalf("expected AppError for duplicate id, got %v", err)
	}
}

func TestGormStore_WithService(t *testing.T) {
	store := newSQLiteStore(t)
	svc := newTestService(store, nil)
	ctx := context.Background()

	if err := svc.Seed(ctx, []string{"https://cdn.example.com/stonks.png"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := svc.Submit(ctx, SubmitRequest{URL: "http://x/b.png", Text: "from bot"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	resp, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[1].Message == nil || *resp.Data[1].Message != "from bot" {
		t.Errorf("list = %+v", resp.Data)
	}
}

func TestGormStore_LazyUnavailable(t *testing.T) {
	store := NewLazyGormStore(func() *database.DB { return nil })

	err := store.Add(context.Background(), Image{ID: "x", URL: "http://x/a.png"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if _, err := store.List(context.Background()); err == nil {
		t.Error("expected List to fail without a database")
	}
}
