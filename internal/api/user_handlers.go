package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"parkhub/internal/apperr"
	"parkhub/internal/auth"
	"parkhub/internal/service"
)

type UserHandler struct {
	Lots      *service.LotService
	Bookings  *service.BookingService
	Summaries *service.SummaryService
	Export    *service.ExportService
}

func NewUserHandler(lots *service.LotService, bookings *service.BookingService,
	summaries *service.SummaryService, export *service.ExportService) *UserHandler {
	return &UserHandler{Lots: lots, Bookings: bookings, Summaries: summaries, Export: export}
}

func (h *UserHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.Lots.ListForUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLotResponses(lots))
}

func (h *UserHandler) SearchLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.Lots.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLotResponses(lots))
}

func (h *UserHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	claims := auth.FromContext(r.Context())
	res, err := h.Bookings.Book(r.Context(), claims.UserID, req.LotID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *UserHandler) OccupySpot(w http.ResponseWriter, r *http.Request) {
	var req ReservationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	claims := auth.FromContext(r.Context())
	res, err := h.Bookings.MarkOccupied(r.Context(), req.ReservationID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *UserHandler) ReleaseSpot(w http.ResponseWriter, r *http.Request) {
	var req ReservationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	claims := auth.FromContext(r.Context())
	res, err := h.Bookings.Release(r.Context(), req.ReservationID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	entries, err := h.Bookings.History(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(entries))
}

// BookingStatus mirrors History; it exists as its own route for the
// dashboard's status view.
func (h *UserHandler) BookingStatus(w http.ResponseWriter, r *http.Request) {
	h.History(w, r)
}

func (h *UserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	s, err := h.Summaries.UserSummary(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserSummaryResponse{
		TotalBookings:  s.TotalBookings,
		ActiveBookings: s.ActiveBookings,
		TotalSpent:     s.TotalSpent,
	})
}

func (h *UserHandler) SummaryCharts(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	charts, err := h.Summaries.UserCharts(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserChartsResponse{
		Months:           charts.Months,
		BookingsPerMonth: charts.BookingsPerMonth,
		Lots:             charts.Lots,
		BookingsPerLot:   charts.BookingsPerLot,
		TotalSpent:       charts.TotalSpent,
	})
}

func (h *UserHandler) ExportHistoryCSV(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="user_%d_history.csv"`, claims.UserID))
	if err := h.Export.WriteUserHistoryCSV(r.Context(), claims.UserID, w); err != nil {
		// Headers may already be out; all we can do is log through writeError's path.
		writeError(w, err)
	}
}
