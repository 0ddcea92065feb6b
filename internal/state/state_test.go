package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsAtDawnOfDayOne(t *testing.T) {
	s := New()
	assert.Equal(t, 360.0, s.ClockMinutes)
	assert.Equal(t, 1, s.DayIndex)
	assert.True(t, s.IsDaytime())
	assert.Equal(t, "06:00", s.ClockHHMM())
}

func TestAdvanceUsesDayAndNightRates(t *testing.T) {
	s := New()
	s.Advance(10)
	assert.InDelta(t, 374.0, s.ClockMinutes, 1e-9)
	assert.InDelta(t, 10.0, s.ElapsedSeconds, 1e-9)

	s.ClockMinutes = 1300
	assert.Equal(t, 10.0, s.MinutesPerSecond())
	s.NightOpsUnlocked = true
	assert.Equal(t, 4.0, s.MinutesPerSecond())
	s.ClockMinutes = DefaultDayEndMinutes
	assert.False(t, s.IsDaytime())
	s.ClockMinutes = DefaultDayEndMinutes - 0.01
	assert.True(t, s.IsDaytime())
}

func TestAdvanceWrapsAndRollsBuckets(t *testing.T) {
	s := New()
	s.Rates.NightNoLights = 2.0
	s.ClockMinutes = 1439.5
	s.Advance(1)

	assert.InDelta(t, 1.5, s.ClockMinutes, 1e-9)
	assert.Equal(t, 2, s.DayIndex)
	assert.Equal(t, []float64{0}, s.DailyIncome)
	assert.Equal(t, []float64{0}, s.DailyReceived)
	assert.Equal(t, []float64{0}, s.DailyMissed)

	s.ClockMinutes = 1439.5
	s.Advance(0.5)
	assert.InDelta(t, 0.5, s.ClockMinutes, 1e-9)
	assert.Equal(t, 3, s.DayIndex)
	assert.Len(t, s.DailyIncome, 2)
}

func TestHistoryKeepsTenDays(t *testing.T) {
	s := New()
	s.AddIncome(1)
	for day := 0; day < 15; day++ {
		s.ClockMinutes = 1439
		s.Advance(1)
		s.AddIncome(float64(day + 2))
	}
	require.Len(t, s.DailyIncome, HistoryDays)
	require.Len(t, s.DailyReceived, HistoryDays)
	require.Len(t, s.DailyMissed, HistoryDays)
	assert.Equal(t, 16.0, s.DailyIncome[HistoryDays-1])
	assert.Equal(t, 7.0, s.DailyIncome[0])
}

func TestAddIncomeCreatesBucket(t *testing.T) {
	s := New()
	s.AddIncome(100)
	assert.Equal(t, 100.0, s.Bank)
	require.Len(t, s.DailyIncome, 1)
	assert.Equal(t, 100.0, s.DailyIncome[0])
}

func TestCounters(t *testing.T) {
	s := New()
	s.AddReceived()
	s.AddMissed()
	s.AddDiverted()
	assert.Equal(t, 1, s.Received)
	assert.Equal(t, 1, s.Missed)
	assert.Equal(t, 1, s.Diverted)
	assert.Equal(t, []float64{1}, s.DailyReceived)
	assert.Equal(t, []float64{2}, s.DailyMissed)
}

func TestSpend(t *testing.T) {
	s := New()
	s.Bank = 50
	assert.False(t, s.Spend(60))
	assert.Equal(t, 50.0, s.Bank)
	assert.True(t, s.Spend(50))
	assert.Zero(t, s.Bank)
}

func TestRecordTierUpgrade(t *testing.T) {
	s := New()
	s.RecordTierUpgrade(2)
	s.RecordTierUpgrade(1)
	assert.Equal(t, 2, s.ProgressionTier)
	assert.Equal(t, 1, s.TierCount(1))
	assert.Equal(t, 1, s.TierCount(2))
	assert.Zero(t, s.TierCount(4))
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.AddIncome(5)
	s.RecordTierUpgrade(1)
	c := s.Clone()
	c.DailyIncome[0] = 99
	c.TierUpgradeCounts[1] = 7
	assert.Equal(t, 5.0, s.DailyIncome[0])
	assert.Equal(t, 1, s.TierCount(1))
}
