package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"urbpark/internal/api"
	"urbpark/internal/auth"
	"urbpark/internal/repository"
	"urbpark/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	gateway := service.NewStripeGateway(os.Getenv("STRIPE_SECRET_KEY"), os.Getenv("PAYMENT_KEY_SECRET"))

	bookingRepo := repository.NewBookingRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	reservationSvc := service.NewReservationService(bookingRepo, slotRepo, gateway)
	jobSvc := service.NewJobService(jobRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)

	bookingHandler := api.NewBookingHandler(reservationSvc)
	adminHandler := api.NewAdminHandler(reservationSvc, jobSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	c := cron.New()
	c.AddFunc("@every 1m", func() {
		if err := jobSvc.ExpireStalePendingBookings(); err != nil {
			log.Printf("Cron: %v", err)
		}
	})
	c.AddFunc("@every 1m", func() {
		if err := jobSvc.CompleteFinishedBookings(); err != nil {
			log.Printf("Cron: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/health", bookingHandler.Health).Methods("GET")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/token/{token}", bookingHandler.GetBookingByToken).Methods("GET")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/confirm", bookingHandler.ConfirmBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/cancel", bookingHandler.CancelBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/create-extension-order", bookingHandler.CreateExtensionOrder).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/confirm-extension", bookingHandler.ConfirmExtension).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/session-status", bookingHandler.SessionStatus).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/entry-scan", bookingHandler.EntryScan).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/exit-scan", bookingHandler.ExitScan).Methods("POST")
	r.HandleFunc("/api/users/{userId}/bookings", bookingHandler.ListUserBookings).Methods("GET")
	r.HandleFunc("/api/parking-areas/{id}/slots-status", bookingHandler.SlotStatus).Methods("GET")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/sweeps/run", adminHandler.RunSweeps).Methods("POST")
	admin.HandleFunc("/users", adminAuthHandler.CreateAdmin).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.CombinedLoggingHandler(os.Stdout, cors(r))))
}
