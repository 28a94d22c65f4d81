package pricing

import (
	"testing"
	"time"

	"github.com/cubanstagelink-ai/reupspots-app/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		PostCredits: map[string]int{
			"Slots":    1,
			"Missions": 2,
			"Tasks":    3,
			"Projects": 4,
			"Chances":  5,
		},
		BoostCredits: map[string]int{
			"None":           0,
			"24h Boost":      2,
			"72h Boost":      4,
			"7 Day Featured": 8,
		},
		TierFees: map[string]int64{
			"Slots":    50,
			"Missions": 100,
			"Tasks":    150,
			"Projects": 200,
			"Chances":  250,
		},
		BoostFees: map[string]config.BoostFee{
			"None":           {FeeCents: 0, Hours: 0},
			"24h Boost":      {FeeCents: 300, Hours: 24},
			"72h Boost":      {FeeCents: 500, Hours: 72},
			"7 Day Featured": {FeeCents: 1000, Hours: 168},
		},
		EventCredits:     1,
		NSFWEventCredits: 3,
	}
}

func TestTotalCreditCost(t *testing.T) {
	calc := NewCalculator(testConfig())

	tests := []struct {
		name        string
		isEvent     bool
		isNSFWEvent bool
		tier        string
		boost       string
		want        int
	}{
		{"slots no boost", false, false, "Slots", "None", 1},
		{"projects with 72h boost", false, false, "Projects", "72h Boost", 8},
		{"chances with weekly feature", false, false, "Chances", "7 Day Featured", 13},
		{"unknown tier costs minimum", false, false, "Mystery", "None", 1},
		{"unknown boost costs nothing", false, false, "Tasks", "Mega Boost", 3},
		{"event ignores tier", true, false, "Chances", "None", 1},
		{"nsfw event", true, true, "Slots", "None", 3},
		{"nsfw event with boost", true, true, "Slots", "24h Boost", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.TotalCreditCost(tt.isEvent, tt.isNSFWEvent, tt.tier, tt.boost)
			if got != tt.want {
				t.Errorf("TotalCreditCost = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMoneyTotal(t *testing.T) {
	calc := NewCalculator(testConfig())

	fees := calc.MoneyTotal(10000, "Projects", "None")
	if fees.TierFee != 200 || fees.BoostFee != 0 || fees.TotalAmount != 10200 {
		t.Errorf("MoneyTotal(10000, Projects, None) = %+v, want {200 0 10200}", fees)
	}

	fees = calc.MoneyTotal(5000, "Slots", "24h Boost")
	if fees.TierFee != 50 || fees.BoostFee != 300 || fees.TotalAmount != 5350 {
		t.Errorf("MoneyTotal(5000, Slots, 24h Boost) = %+v, want {50 300 5350}", fees)
	}

	// Unknown tiers and boosts carry no fee.
	fees = calc.MoneyTotal(1000, "Mystery", "Mystery")
	if fees.TotalAmount != 1000 {
		t.Errorf("MoneyTotal unknown tier/boost total = %d, want 1000", fees.TotalAmount)
	}
}

func TestCanAfford(t *testing.T) {
	if !CanAfford(5, 5, "free") {
		t.Error("exact balance should afford")
	}
	if CanAfford(4, 5, "free") {
		t.Error("short balance should not afford")
	}
	if !CanAfford(0, 100, PlanElite) {
		t.Error("elite plan should afford regardless of balance")
	}
}

func TestBoostExpiry(t *testing.T) {
	calc := NewCalculator(testConfig())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := calc.BoostExpiry("None", now); got != nil {
		t.Errorf("BoostExpiry(None) = %v, want nil", got)
	}
	got := calc.BoostExpiry("72h Boost", now)
	if got == nil {
		t.Fatal("BoostExpiry(72h Boost) = nil, want a time")
	}
	if want := now.Add(72 * time.Hour); !got.Equal(want) {
		t.Errorf("BoostExpiry(72h Boost) = %v, want %v", got, want)
	}
	got = calc.BoostExpiry("7 Day Featured", now)
	if got == nil || !got.Equal(now.Add(168*time.Hour)) {
		t.Errorf("BoostExpiry(7 Day Featured) = %v, want now+168h", got)
	}
}
