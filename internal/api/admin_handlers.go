package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkhub/internal/apperr"
	"parkhub/internal/db"
	"parkhub/internal/service"
)

type AdminHandler struct {
	Lots      *service.LotService
	Auth      *service.AuthService
	Summaries *service.SummaryService
}

func NewAdminHandler(lots *service.LotService, authSvc *service.AuthService, summaries *service.SummaryService) *AdminHandler {
	return &AdminHandler{Lots: lots, Auth: authSvc, Summaries: summaries}
}

func (h *AdminHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	if req.Price == nil || req.NumberOfSpots == nil {
		writeError(w, apperr.New(apperr.Validation, "missing fields"))
		return
	}
	lot := &db.ParkingLot{
		Name:          req.PrimeLocationName,
		Address:       req.Address,
		PinCode:       req.PinCode,
		Price:         *req.Price,
		NumberOfSpots: *req.NumberOfSpots,
	}
	if err := h.Lots.Create(r.Context(), lot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":    "parking lot created",
		"lot_id": lot.ID,
	})
}

func (h *AdminHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid lot id"))
		return
	}
	var req UpdateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	params := service.UpdateLotParams{
		Name:          req.PrimeLocationName,
		Address:       req.Address,
		PinCode:       req.PinCode,
		Price:         req.Price,
		NumberOfSpots: req.NumberOfSpots,
	}
	if err := h.Lots.Update(r.Context(), id, params); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "parking lot updated"})
}

func (h *AdminHandler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid lot id"))
		return
	}
	if err := h.Lots.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "parking lot deleted"})
}

func (h *AdminHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.Lots.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLotResponses(lots))
}

func (h *AdminHandler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid spot id"))
		return
	}
	if err := h.Lots.DeleteSpot(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "spot deleted"})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Summaries.AdminSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminSummaryResponse{
		TotalLots:       s.TotalLots,
		TotalSpots:      s.TotalSpots,
		OccupiedSpots:   s.OccupiedSpots,
		RegisteredUsers: s.RegisteredUsers,
	})
}

func (h *AdminHandler) SummaryCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.Summaries.AdminCharts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminChartsResponse{
		Lots:      charts.Lots,
		Bookings:  charts.Bookings,
		Occupancy: charts.Occupancy,
	})
}
