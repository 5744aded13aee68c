package analysis

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
	if err := db.AutoMigrate(&DimensionResult{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedResult(t *testing.T, repo *Repo, seq int, userID uint64, role, dimension string, payload []byte) {
	t.Helper()
	day := 1 + 7*seq
	res := &DimensionResult{
		// ids sort with seq, like time-ordered ULIDs
		ID:            fmt.Sprintf("01ANA%021d", seq),
		UserID:        userID,
		MarketplaceID: "m1",
		Role:          role,
		PeriodStart:   datatypes.Date(time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC)),
		PeriodEnd:     datatypes.Date(time.Date(2026, 7, day+6, 0, 0, 0, 0, time.UTC)),
		DimensionType: dimension,
		DataPayload:   payload,
	}
	if err := repo.Create(context.Background(), res); err != nil {
		t.Fatalf("seed %d: %v", seq, err)
	}
}

func TestLatestPayload_PicksNewest(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seedResult(t, repo, 0, 1, RoleBoss, DimensionKPIMetrics, []byte(`{"acos":0.35}`))
	seedResult(t, repo, 1, 1, RoleBoss, DimensionKPIMetrics, []byte(`{"acos":0.31}`))

	payload, ok, err := repo.LatestPayload(context.Background(), 1, "m1", RoleBoss, DimensionKPIMetrics)
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if string(payload) != `{"acos":0.31}` {
		t.Fatalf("expected the newer payload, got %s", payload)
	}
}

func TestLatestPayload_ScopedByDimensionCombination(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seedResult(t, repo, 0, 1, RoleBoss, DimensionKPIMetrics, []byte(`{"x":1}`))

	cases := []struct {
		name      string
		userID    uint64
		role      string
		dimension string
	}{
		{"other user", 2, RoleBoss, DimensionKPIMetrics},
		{"other role", 1, RoleOps, DimensionKPIMetrics},
		{"other dimension", 1, RoleBoss, DimensionDecisionCenter},
	}
	for _, tc := range cases {
		payload, ok, err := repo.LatestPayload(context.Background(), tc.userID, "m1", tc.role, tc.dimension)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if ok || payload != nil {
			t.Fatalf("%s: expected empty state, got %s", tc.name, payload)
		}
	}
}

func TestValidators(t *testing.T) {
	for _, role := range []string{RoleBoss, RoleAnalyst, RoleOps} {
		if !ValidRole(role) {
			t.Fatalf("role %s rejected", role)
		}
	}
	if ValidRole("SYSTEM") || ValidRole("") {
		t.Fatalf("unknown role accepted")
	}

	for _, d := range []string{DimensionKPIMetrics, DimensionAnalystInsights,
		DimensionCoveragePrecision, DimensionAIRevenueSimulation, DimensionDecisionCenter} {
		if !ValidDimension(d) {
			t.Fatalf("dimension %s rejected", d)
		}
	}
	if ValidDimension("SALES_FORECAST") {
		t.Fatalf("unknown dimension accepted")
	}
}
