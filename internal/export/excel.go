package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"tourbook/internal/domain"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Tour", "Date", "Time", "Participants",
	"Total", "Currency", "Customer", "Email", "Phone", "Hotel", "Status",
}

// Exporter writes bookings for a date range into an xlsx workbook.
type Exporter struct {
	bookings domain.BookingService
	path     string
	logger   *zerolog.Logger
}

func NewExporter(bookings domain.BookingService, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		bookings: bookings,
		path:     path,
		logger:   logger,
	}
}

// ExportBookings creates the file on disk and returns its path.
func (e *Exporter) ExportBookings(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.bookings.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings %s - %s",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for row, b := range bookings {
		values := []any{
			b.ID, b.TourName, b.Date, b.Time, b.Participants,
			b.TotalPrice, b.Currency,
			b.Customer.FirstName + " " + b.Customer.LastName,
			b.Customer.Email, b.Customer.Phone, b.Customer.Hotel,
			b.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "H", "K", 24)

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel export created")
	return filePath, nil
}
