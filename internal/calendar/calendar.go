package calendar

import "time"

// GridSize is the fixed number of cells in a month view: 6 weeks of 7 days,
// regardless of month length or starting weekday.
const GridSize = 42

const dateLayout = "2006-01-02"

// DayCell is one cell of the month grid.
type DayCell struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
	IsSelected     bool   `json:"isSelected"`
	IsPast         bool   `json:"isPast"`
}

// MonthGrid builds the 42-cell grid for a reference month. Leading filler
// days come from walking backward from the 1st by its weekday offset
// (Sunday-first), trailing filler fills forward to exactly 42 cells.
// selected is compared by string equality with each cell's date; now anchors
// the today/past flags.
func MonthGrid(year int, month time.Month, selected string, now time.Time) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	cells := make([]DayCell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		d := start.AddDate(0, 0, i)
		ds := d.Format(dateLayout)
		cells = append(cells, DayCell{
			Date:           ds,
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == month && d.Year() == year,
			IsToday:        d.Equal(today),
			IsSelected:     selected != "" && ds == selected,
			IsPast:         d.Before(today),
		})
	}
	return cells
}

// Select applies a cell selection to the current date value. Picking a past
// cell is a no-op; anything else becomes the new selection.
func Select(cell DayCell, current string) string {
	if cell.IsPast {
		return current
	}
	return cell.Date
}

// PrevMonth moves the displayed reference month back by one. It never
// touches the selection.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// NextMonth moves the displayed reference month forward by one.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
