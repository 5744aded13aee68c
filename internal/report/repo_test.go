package report

import (
	"context"
	"errors"
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
	if err := db.AutoMigrate(&Report{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func weekOf(t *testing.T, day int) (datatypes.Date, datatypes.Date) {
	t.Helper()
	start := time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC)
	return datatypes.Date(start), datatypes.Date(start.AddDate(0, 0, 6))
}

func seed(t *testing.T, repo *Repo, id string, day int, adType string, mcp []byte) {
	t.Helper()
	ps, pe := weekOf(t, day)
	rep := &Report{
		ID:            id,
		Domain:        DomainMarketing,
		UserID:        1,
		MarketplaceID: "m1",
		PeriodStart:   ps,
		PeriodEnd:     pe,
		AdType:        adType,
		ReportType:    "weekly",
		ReportSource:  "amazon",
		McpData:       mcp,
	}
	if err := repo.Create(context.Background(), rep); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestListRecent_BoundsToNewestPeriods(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	// 6 weekly periods, two reports in the newest one
	for i := 0; i < 6; i++ {
		seed(t, repo, fmt.Sprintf("R%025d", i), 1+7*i, "SP", []byte(`{"x":1}`))
	}
	seed(t, repo, "R0000000000000000000000100", 1+7*5, "SB", []byte(`{"x":2}`))

	got, err := repo.ListRecent(context.Background(), 1, "m1", DomainMarketing, 4)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 4 newest periods, one of which holds two reports
	if len(got) != 5 {
		t.Fatalf("expected 5 reports, got %d", len(got))
	}
	for _, r := range got {
		ps := time.Time(r.PeriodStart)
		if ps.Before(time.Date(2026, 7, 1+7*2, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("report %s from an old period leaked in (start=%s)", r.ID, ps)
		}
		if len(r.McpData) != 0 {
			t.Fatalf("list responses must not carry payload blobs")
		}
	}
	// newest period first
	first := time.Time(got[0].PeriodStart)
	last := time.Time(got[len(got)-1].PeriodStart)
	if first.Before(last) {
		t.Fatalf("expected newest period first: first=%s last=%s", first, last)
	}
}

func TestListRecent_EmptyAndScoped(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo, "R0000000000000000000000001", 1, "SP", []byte(`{"x":1}`))

	got, err := repo.ListRecent(context.Background(), 2, "m1", DomainMarketing, 4)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("another user's reports leaked: %d", len(got))
	}

	got, err = repo.ListRecent(context.Background(), 1, "m1", DomainOperations, 4)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("another domain's reports leaked: %d", len(got))
	}
}

func TestLatest_PicksNewestOfTriple(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo, "R0000000000000000000000001", 1, "SP", []byte(`{"week":1}`))
	seed(t, repo, "R0000000000000000000000002", 8, "SP", []byte(`{"week":2}`))
	seed(t, repo, "R0000000000000000000000003", 15, "SB", []byte(`{"week":3}`))

	rep, err := repo.Latest(context.Background(), 1, "m1", DomainMarketing, "SP", "weekly", "amazon")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rep.ID != "R0000000000000000000000002" {
		t.Fatalf("expected newest SP report, got %s", rep.ID)
	}
	if len(rep.McpData) == 0 {
		t.Fatalf("latest must include the payload")
	}

	if _, err := repo.Latest(context.Background(), 1, "m1", DomainMarketing, "SD", "weekly", "amazon"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestContext(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo, "R0000000000000000000000001", 1, "SP", []byte(`{"ctr":0.02}`))
	seed(t, repo, "R0000000000000000000000002", 8, "SP", nil)
	seed(t, repo, "R0000000000000000000000003", 15, "SP", []byte(`null`))

	blob, domain, ok, err := repo.Context(context.Background(), "R0000000000000000000000001")
	if err != nil || !ok {
		t.Fatalf("context: ok=%v err=%v", ok, err)
	}
	if domain != DomainMarketing || string(blob) != `{"ctr":0.02}` {
		t.Fatalf("unexpected context: domain=%s blob=%s", domain, blob)
	}

	for _, id := range []string{"R0000000000000000000000002", "R0000000000000000000000003", "Rmissing"} {
		_, _, ok, err := repo.Context(context.Background(), id)
		if err != nil {
			t.Fatalf("context %s: %v", id, err)
		}
		if ok {
			t.Fatalf("context %s: expected ok=false", id)
		}
	}
}
