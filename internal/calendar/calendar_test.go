package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

func TestMonthGridInvariant(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	// Every month of several years, including leap and non-leap February,
	// must yield exactly 42 cells with exactly the month's days flagged
	// as current.
	for _, year := range []int{2024, 2025, 2026} {
		for month := time.January; month <= time.December; month++ {
			t.Run(fmt.Sprintf("%d-%02d", year, month), func(t *testing.T) {
				cells := MonthGrid(year, month, "", now)
				require.Len(t, cells, GridSize)

				current := 0
				for _, c := range cells {
					if c.IsCurrentMonth {
						current++
					}
				}
				assert.Equal(t, daysInMonth(year, month), current)

				// Grid is contiguous: consecutive calendar days.
				prev, err := time.Parse("2006-01-02", cells[0].Date)
				require.NoError(t, err)
				for _, c := range cells[1:] {
					d, err := time.Parse("2006-01-02", c.Date)
					require.NoError(t, err)
					assert.Equal(t, prev.AddDate(0, 0, 1), d)
					prev = d
				}
			})
		}
	}
}

func TestMonthGridLeadingOffset(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	// September 2026 starts on a Tuesday, so two filler cells lead the grid.
	cells := MonthGrid(2026, time.September, "", now)
	assert.False(t, cells[0].IsCurrentMonth)
	assert.False(t, cells[1].IsCurrentMonth)
	assert.True(t, cells[2].IsCurrentMonth)
	assert.Equal(t, "2026-09-01", cells[2].Date)

	// February 2026 starts on a Sunday: no leading filler at all.
	cells = MonthGrid(2026, time.February, "", now)
	assert.True(t, cells[0].IsCurrentMonth)
	assert.Equal(t, "2026-02-01", cells[0].Date)
}

func TestMonthGridFlags(t *testing.T) {
	now := time.Date(2026, time.September, 15, 9, 30, 0, 0, time.UTC)
	cells := MonthGrid(2026, time.September, "2026-09-20", now)

	var today, selected DayCell
	for _, c := range cells {
		if c.IsToday {
			today = c
		}
		if c.IsSelected {
			selected = c
		}
	}
	assert.Equal(t, "2026-09-15", today.Date)
	assert.False(t, today.IsPast, "today is not past")
	assert.Equal(t, "2026-09-20", selected.Date)

	for _, c := range cells {
		d, _ := time.Parse("2006-01-02", c.Date)
		assert.Equal(t, d.Before(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)), c.IsPast, c.Date)
	}
}

func TestSelectIgnoresPast(t *testing.T) {
	now := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	cells := MonthGrid(2026, time.September, "", now)

	for _, c := range cells {
		got := Select(c, "2026-09-20")
		if c.IsPast {
			assert.Equal(t, "2026-09-20", got, "past cell %s must not change the selection", c.Date)
		} else {
			assert.Equal(t, c.Date, got)
		}
	}
}

func TestMonthNavigation(t *testing.T) {
	y, m := PrevMonth(2026, time.January)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.December, m)

	y, m = NextMonth(2025, time.December)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.January, m)

	y, m = NextMonth(2026, time.June)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.July, m)
}

func TestMonthGridEmptySelection(t *testing.T) {
	now := time.Now()
	for _, c := range MonthGrid(2026, time.March, "", now) {
		assert.False(t, c.IsSelected)
	}
}
