// Package risk scores account-recovery attempts against a user's login
// history and derives per-user adaptive decision thresholds.
package risk

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/askeland/riskgate/internal/models"
)

const (
	lowFloor     = 2.5
	lowCeiling   = 4.0
	highCeiling  = 7.0
	thresholdGap = 2.5

	lowPercentile  = 0.6
	highPercentile = 0.9

	// An attempt timestamp more than this many sample standard deviations
	// from the historical mean counts as a time anomaly.
	zScoreLimit      = 1.5
	timeAnomalyScore = 1.0
)

// Engine computes contextual risk assessments. It is a pure function of its
// inputs: all I/O (history retrieval, geo lookup) happens before a call.
type Engine struct {
	logger *slog.Logger

	ipWeight      float64
	countryWeight float64
	browserWeight float64
	osWeight      float64
}

// NewEngine creates an Engine with the default dimension weights. Country
// carries the most weight, browser the least.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger:        logger,
		ipWeight:      2,
		countryWeight: 3,
		browserWeight: 1,
		osWeight:      2,
	}
}

// Assess scores an attempt against the user's login history and classifies it
// into a tier using thresholds derived from that same history. An empty
// history yields High unconditionally: absence of evidence is treated as
// suspicious, not safe.
func (e *Engine) Assess(history []models.LoginRecord, attempt models.RecoveryAttempt) models.RiskAssessment {
	if len(history) == 0 {
		return models.RiskAssessment{
			Score:      0,
			Level:      models.RiskLevelHigh,
			Thresholds: floorThresholds(),
		}
	}

	score := e.contextualScore(history, attempt.IPAddress, attempt.Country, attempt.Browser, attempt.OperatingSystem, attempt.RecoveryTime)
	thresholds := e.adaptiveThresholds(history)

	var level models.RiskLevel
	switch {
	case score >= thresholds.High:
		level = models.RiskLevelHigh
	case score >= thresholds.Low:
		level = models.RiskLevelMedium
	default:
		level = models.RiskLevelLow
	}

	e.logger.Debug("risk assessment computed",
		slog.Float64("score", score),
		slog.Float64("threshold_low", thresholds.Low),
		slog.Float64("threshold_high", thresholds.High),
		slog.String("level", level.String()))

	return models.RiskAssessment{
		Score:      score,
		Level:      level,
		Thresholds: thresholds,
	}
}

// contextualScore sums the four frequency sub-scores and the time anomaly
// sub-score, with no further normalization.
func (e *Engine) contextualScore(history []models.LoginRecord, ip, country, browser, os string, at time.Time) float64 {
	ipFreq := make(map[string]int, len(history))
	countryFreq := make(map[string]int, len(history))
	browserFreq := make(map[string]int, len(history))
	osFreq := make(map[string]int, len(history))
	for _, rec := range history {
		ipFreq[rec.IPAddress]++
		countryFreq[rec.Country]++
		browserFreq[rec.Browser]++
		osFreq[rec.OperatingSystem]++
	}

	score := frequencyScore(ipFreq, ip, e.ipWeight, len(history))
	score += frequencyScore(countryFreq, country, e.countryWeight, len(history))
	score += frequencyScore(browserFreq, browser, e.browserWeight, len(history))
	score += frequencyScore(osFreq, os, e.osWeight, len(history))
	score += timeAnomaly(history, at)
	return score
}

// frequencyScore weights a dimension by how rare the attempt's value is in
// the user's history: never seen earns the full base weight, rare values a
// fraction of it, and common values nothing.
func frequencyScore(freq map[string]int, value string, baseWeight float64, total int) float64 {
	proportion := float64(freq[value]) / float64(total)
	switch {
	case proportion == 0:
		return baseWeight
	case proportion <= 0.2:
		return baseWeight * 0.8
	case proportion <= 0.5:
		return baseWeight * 0.6
	default:
		return 0
	}
}

// timeAnomaly contributes a flat score when the attempt falls outside the
// user's usual login hours. With fewer than two historical points (or zero
// variance) there is not enough signal, so it contributes nothing.
func timeAnomaly(history []models.LoginRecord, at time.Time) float64 {
	if len(history) < 2 {
		return 0
	}

	times := make([]float64, len(history))
	for i, rec := range history {
		times[i] = float64(rec.LoginTime.Unix())
	}

	mean := meanOf(times)
	std := sampleStdDev(times, mean)
	if std == 0 {
		return 0
	}

	z := (float64(at.Unix()) - mean) / std
	if math.Abs(z) > zScoreLimit {
		return timeAnomalyScore
	}
	return 0
}

// adaptiveThresholds scores each historical record against the whole history
// and cuts the resulting distribution at the 60th and 90th percentiles. The
// low cutoff is clamped to [2.5, 4.0] and the high cutoff to [low+2.5, 7.0]
// so a noisy history can never make the tiers degenerate. With fewer than
// three records there is no usable distribution and the clamp floors apply.
func (e *Engine) adaptiveThresholds(history []models.LoginRecord) models.RiskThresholds {
	scores := make([]float64, 0, len(history))
	for i, rec := range history {
		// The first two records have no earlier context to compare against.
		if i < 2 {
			continue
		}
		s := e.contextualScore(history, rec.IPAddress, rec.Country, rec.Browser, rec.OperatingSystem, rec.LoginTime)
		scores = append(scores, s)
	}

	if len(scores) == 0 {
		return floorThresholds()
	}

	sort.Float64s(scores)
	low := percentileValue(scores, lowPercentile)
	high := percentileValue(scores, highPercentile)

	low = math.Max(math.Min(low, lowCeiling), lowFloor)
	high = math.Max(math.Min(high, highCeiling), low+thresholdGap)

	return models.RiskThresholds{
		Low:  round2(low),
		High: round2(high),
	}
}

func floorThresholds() models.RiskThresholds {
	return models.RiskThresholds{Low: lowFloor, High: lowFloor + thresholdGap}
}

// percentileValue picks the value at the given fraction of a sorted slice,
// truncating the index.
func percentileValue(sorted []float64, p float64) float64 {
	idx := int(float64(len(sorted)) * p)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev divides by n-1; callers guarantee len(values) >= 2.
func sampleStdDev(values []float64, mean float64) float64 {
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
