package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tourbook/internal/calendar"
	"tourbook/internal/database"
	"tourbook/internal/models"
	"tourbook/internal/service"
)

const dateLayout = "2006-01-02"

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.CreateDirectBooking(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBooking):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": err.Error()})
		case errors.Is(err, service.ErrTourNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "activity not found"})
		default:
			s.logger.Error().Err(err).Msg("create booking failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{"bookingId": booking.ID},
	})
}

func (s *HTTPServer) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	receipt, err := s.bookings.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("get receipt failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.exporter.ExportBookings(r.Context(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export file unavailable")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeContent(w, r, filepath.Base(path), time.Now(), f)
}

// parseRange reads from/to query params; missing bounds default to a window
// around today.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, -models.DefaultExportRangeMonthsBefore, 0)
	end := now.AddDate(0, models.DefaultExportRangeMonthsAfter, 0)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date; expected YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date; expected YYYY-MM-DD")
		}
		end = parsed
	}
	return start, end, nil
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		month = time.Month(parsed)
	}
	selected := r.URL.Query().Get("selected")

	cells := calendar.MonthGrid(year, month, selected, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"cells": cells,
	})
}

func (s *HTTPServer) handleListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := s.catalog.ListTours(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list tours failed")
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tours": tours})
}

func (s *HTTPServer) handleGetTour(w http.ResponseWriter, r *http.Request) {
	tour, err := s.catalog.GetTour(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "tour not found")
		return
	}
	writeJSON(w, http.StatusOK, tour)
}
