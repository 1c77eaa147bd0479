package risk_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/internal/risk"
	"github.com/stretchr/testify/assert"
)

func newEngine() *risk.Engine {
	return risk.NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stableHistory returns n identical logins from one IP/country/browser/OS,
// one per day at 10:00.
func stableHistory(n int) []models.LoginRecord {
	base := time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC)
	history := make([]models.LoginRecord, n)
	for i := range history {
		history[i] = models.LoginRecord{
			Username:        "testuser",
			IPAddress:       "192.168.1.1",
			Country:         "Norway",
			Browser:         "Google Chrome",
			OperatingSystem: "Windows 10",
			LoginTime:       base.AddDate(0, 0, i),
		}
	}
	return history
}

func matchingAttempt(at time.Time) models.RecoveryAttempt {
	return models.RecoveryAttempt{
		Username:        "testuser",
		IPAddress:       "192.168.1.1",
		Country:         "Norway",
		Browser:         "Google Chrome",
		OperatingSystem: "Windows 10",
		RecoveryTime:    at,
	}
}

func TestAssess_EmptyHistoryIsHighRisk(t *testing.T) {
	engine := newEngine()

	result := engine.Assess(nil, matchingAttempt(time.Now()))

	assert.Equal(t, models.RiskLevelHigh, result.Level)
}

func TestAssess_StableHistoryMatchingAttemptIsLowRisk(t *testing.T) {
	engine := newEngine()
	history := stableHistory(10)

	// Attempt from the same context, inside the historical time window.
	attempt := matchingAttempt(time.Date(2024, 11, 20, 10, 10, 0, 0, time.UTC))
	result := engine.Assess(history, attempt)

	assert.Equal(t, models.RiskLevelLow, result.Level)
	assert.Equal(t, 0.0, result.Score)
}

func TestAssess_NewBrowserOnlyStaysBelowHigh(t *testing.T) {
	engine := newEngine()
	history := stableHistory(10)

	attempt := matchingAttempt(time.Date(2024, 11, 20, 10, 10, 0, 0, time.UTC))
	attempt.Browser = "Mozilla Firefox"
	result := engine.Assess(history, attempt)

	// Browser is the lowest-weight dimension; a single change can at most
	// lift the tier to Medium.
	assert.NotEqual(t, models.RiskLevelHigh, result.Level)
	assert.Equal(t, 1.0, result.Score)
}

func TestAssess_NewIPAtUnusualHourIsMediumRisk(t *testing.T) {
	engine := newEngine()
	history := stableHistory(10)

	attempt := matchingAttempt(time.Date(2024, 12, 24, 3, 0, 0, 0, time.UTC))
	attempt.IPAddress = "10.0.0.99"
	result := engine.Assess(history, attempt)

	// Never-seen IP (2.0) plus time anomaly (1.0) lands between the clamp
	// floor and the high cutoff.
	assert.Equal(t, models.RiskLevelMedium, result.Level)
	assert.Equal(t, 3.0, result.Score)
}

func TestAssess_EverythingNewFarOutsideWindowIsHighRisk(t *testing.T) {
	engine := newEngine()
	history := stableHistory(10)

	attempt := models.RecoveryAttempt{
		Username:        "testuser",
		IPAddress:       "10.0.0.99",
		Country:         "Brazil",
		Browser:         "Safari",
		OperatingSystem: "Mac OS",
		RecoveryTime:    time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC),
	}
	result := engine.Assess(history, attempt)

	assert.Equal(t, models.RiskLevelHigh, result.Level)
	assert.Equal(t, 9.0, result.Score)
}

func TestAssess_ThresholdMonotonicity(t *testing.T) {
	engine := newEngine()

	histories := [][]models.LoginRecord{
		stableHistory(3),
		stableHistory(10),
		stableHistory(50),
	}

	// Mix in some variance so the score distribution is not all zeros.
	varied := stableHistory(20)
	for i := range varied {
		if i%3 == 0 {
			varied[i].IPAddress = "172.16.0.7"
		}
		if i%5 == 0 {
			varied[i].Browser = "Safari"
		}
	}
	histories = append(histories, varied)

	for _, history := range histories {
		result := engine.Assess(history, matchingAttempt(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)))
		assert.GreaterOrEqual(t, result.Thresholds.High, result.Thresholds.Low+2.5)
		assert.GreaterOrEqual(t, result.Thresholds.Low, 2.5)
		assert.LessOrEqual(t, result.Thresholds.High, 7.0)
	}
}

func TestAssess_ShortHistoryFallsBackToFloorThresholds(t *testing.T) {
	engine := newEngine()
	history := stableHistory(2)

	result := engine.Assess(history, matchingAttempt(time.Date(2024, 11, 16, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, 2.5, result.Thresholds.Low)
	assert.Equal(t, 5.0, result.Thresholds.High)
}

func TestAssess_SingleLoginHasNoTimeSignal(t *testing.T) {
	engine := newEngine()
	history := stableHistory(1)

	// One data point cannot establish a time pattern, so even a far-off
	// attempt scores only on the contextual dimensions.
	attempt := matchingAttempt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	result := engine.Assess(history, attempt)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.RiskLevelLow, result.Level)
}
