package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookRequest struct {
	CustomerID        int    `json:"customer_id"`
	FlightNumber      int    `json:"flight_number"`
	Departure         string `json:"departure"`
	ReservationNumber int    `json:"reservation_number"`
	Status            string `json:"status"`
}

type bookingResponse struct {
	ReservationNumber int    `json:"reservation_number"`
	CustomerID        int    `json:"customer_id"`
	FlightNumber      int    `json:"flight_number"`
	Departure         string `json:"departure"`
	Status            string `json:"status"`
	StatusName        string `json:"status_name"`
	PreviousStatus    string `json:"previous_status,omitempty"`
	AvailableSeats    int    `json:"available_seats"`
	Downgraded        bool   `json:"downgraded"`
	Outcome           string `json:"outcome"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.book)
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	departure, err := domain.ParseDeparture(req.Departure)
	if err != nil {
		writeError(c, err)
		return
	}
	status, err := domain.ParseReservationStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.Book(c.Request.Context(), booking.Request{
		CustomerID:        req.CustomerID,
		FlightNumber:      req.FlightNumber,
		Departure:         departure,
		ReservationNumber: req.ReservationNumber,
		Status:            status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	code := http.StatusOK
	if result.Outcome == booking.OutcomeCreated {
		code = http.StatusCreated
	}
	c.JSON(code, toBookingResponse(result))
}

func toBookingResponse(result *booking.Result) bookingResponse {
	r := result.Reservation
	return bookingResponse{
		ReservationNumber: r.Number,
		CustomerID:        r.CustomerID,
		FlightNumber:      r.Flight.Number,
		Departure:         r.Flight.DepartureAt.UTC().Format(time.RFC3339),
		Status:            string(r.Status),
		StatusName:        r.Status.Name(),
		PreviousStatus:    string(result.PreviousStatus),
		AvailableSeats:    result.AvailableSeats,
		Downgraded:        result.Downgraded,
		Outcome:           string(result.Outcome),
	}
}
