package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkhub/internal/auth"
	"parkhub/internal/db"
)

// NewRouter assembles the full route table. Role checks happen here, in the
// middleware chain, so handlers and services receive requests whose claims
// are already verified.
func NewRouter(jwtSecret string, authH *AuthHandler, userH *UserHandler, adminH *AdminHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/register", authH.Register).Methods("POST")
	r.HandleFunc("/login", authH.Login).Methods("POST")

	authenticate := auth.Middleware(jwtSecret)

	user := r.PathPrefix("/user").Subrouter()
	user.Use(authenticate, auth.RequireRole(db.RoleUser))
	user.HandleFunc("/parking-lots", userH.ListLots).Methods("GET")
	user.HandleFunc("/search-parking-lots", userH.SearchLots).Methods("GET")
	user.HandleFunc("/book", userH.Book).Methods("POST")
	user.HandleFunc("/occupy-spot", userH.OccupySpot).Methods("POST")
	user.HandleFunc("/release-spot", userH.ReleaseSpot).Methods("POST")
	user.HandleFunc("/history", userH.History).Methods("GET")
	user.HandleFunc("/bookings", userH.BookingStatus).Methods("GET")
	user.HandleFunc("/summary", userH.Summary).Methods("GET")
	user.HandleFunc("/summary-charts", userH.SummaryCharts).Methods("GET")
	user.HandleFunc("/export-csv", userH.ExportHistoryCSV).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authenticate, auth.RequireRole(db.RoleAdmin))
	admin.HandleFunc("/parking-lots", adminH.CreateLot).Methods("POST")
	admin.HandleFunc("/parking-lots", adminH.ListLots).Methods("GET")
	admin.HandleFunc("/parking-lots/{id}", adminH.UpdateLot).Methods("PUT")
	admin.HandleFunc("/parking-lots/{id}", adminH.DeleteLot).Methods("DELETE")
	admin.HandleFunc("/parking-spots/{id}", adminH.DeleteSpot).Methods("DELETE")
	admin.HandleFunc("/users", adminH.ListUsers).Methods("GET")
	admin.HandleFunc("/summary", adminH.Summary).Methods("GET")
	admin.HandleFunc("/summary-charts", adminH.SummaryCharts).Methods("GET")

	return r
}
