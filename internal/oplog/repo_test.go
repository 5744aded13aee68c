package oplog

import (
	"context"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ChangeLog{}, &AuditLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedChangeLogs(t *testing.T, db *gorm.DB, n int, category string) {
	t.Helper()
	for i := 0; i < n; i++ {
		cl := &ChangeLog{
			ID:            fmt.Sprintf("01CHG%021d", i),
			UserID:        1,
			MarketplaceID: "m1",
			PeriodStart:   datatypes.Date(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
			PeriodEnd:     datatypes.Date(time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)),
			Category:      category,
			Content:       []byte(fmt.Sprintf(`{"seq":%d}`, i)),
			CreatedAt:     time.Date(2026, 8, 8, 0, i, 0, 0, time.UTC),
		}
		if err := db.Create(cl).Error; err != nil {
			t.Fatalf("seed changelog %d: %v", i, err)
		}
	}
}

func TestChangeLogs_Pagination(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	seedChangeLogs(t, db, 25, "bid")

	items, total, err := repo.ChangeLogs(context.Background(), Filter{
		UserID: 1, MarketplaceID: "m1", Page: 2, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("changelogs: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items on page 2, got %d", len(items))
	}
	// newest first: page 2 of 10 starts at the 11th newest, seq 14
	if items[0].ID != fmt.Sprintf("01CHG%021d", 14) {
		t.Fatalf("unexpected page head: %s", items[0].ID)
	}

	items, total, err = repo.ChangeLogs(context.Background(), Filter{
		UserID: 1, MarketplaceID: "m1", Page: 3, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("changelogs: %v", err)
	}
	if total != 25 || len(items) != 5 {
		t.Fatalf("last page: total=%d len=%d", total, len(items))
	}
}

func TestChangeLogs_DefaultsAndScoping(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	seedChangeLogs(t, db, 3, "bid")

	// zero page values fall back to page 1, size 20
	items, total, err := repo.ChangeLogs(context.Background(), Filter{UserID: 1, MarketplaceID: "m1"})
	if err != nil {
		t.Fatalf("changelogs: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("defaults: total=%d len=%d", total, len(items))
	}

	items, total, err = repo.ChangeLogs(context.Background(), Filter{UserID: 2, MarketplaceID: "m1"})
	if err != nil {
		t.Fatalf("changelogs: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("another user's logs leaked: total=%d len=%d", total, len(items))
	}

	items, _, err = repo.ChangeLogs(context.Background(), Filter{UserID: 1, MarketplaceID: "m1", Category: "price"})
	if err != nil {
		t.Fatalf("changelogs: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("category filter ignored: %d", len(items))
	}
}

func TestAuditLogs_PeriodFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	for i, day := range []int{1, 8, 15} {
		al := &AuditLog{
			ID:            fmt.Sprintf("01AUD%021d", i),
			UserID:        1,
			MarketplaceID: "m1",
			PeriodStart:   datatypes.Date(time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)),
			PeriodEnd:     datatypes.Date(time.Date(2026, 8, day+6, 0, 0, 0, 0, time.UTC)),
			Category:      "listing",
			Content:       []byte(`{"action":"edited title"}`),
		}
		if err := db.Create(al).Error; err != nil {
			t.Fatalf("seed auditlog %d: %v", i, err)
		}
	}

	items, total, err := repo.AuditLogs(context.Background(), Filter{
		UserID: 1, MarketplaceID: "m1",
		PeriodStart: "2026-08-02", PeriodEnd: "2026-08-15",
	})
	if err != nil {
		t.Fatalf("auditlogs: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("period filter: total=%d len=%d", total, len(items))
	}
	if items[0].ID != "01AUD000000000000000000001" {
		t.Fatalf("unexpected item: %s", items[0].ID)
	}
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 0}
	f.Normalize()
	if f.Page != 1 || f.PageSize != 20 {
		t.Fatalf("defaults: %+v", f)
	}

	f = Filter{Page: 3, PageSize: 500}
	f.Normalize()
	if f.Page != 3 || f.PageSize != 20 {
		t.Fatalf("oversize cap: %+v", f)
	}
}
