package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	Number           int    `json:"flight_number"`
	Departure        string `json:"departure"`
	Arrival          string `json:"arrival"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	Cost             int64  `json:"cost"`
	Stops            int    `json:"stops"`
	PlaneID          int    `json:"plane_id"`
	Capacity         int    `json:"capacity"`
	SeatsSold        int    `json:"seats_sold"`
	AvailableSeats   int    `json:"available_seats"`
}

type seatsResponse struct {
	FlightNumber   int    `json:"flight_number"`
	Departure      string `json:"departure"`
	AvailableSeats int    `json:"available_seats"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:number/seats", h.seats)
}

func (h *FlightHandler) list(c *gin.Context) {
	instances, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]flightResponse, 0, len(instances))
	for _, instance := range instances {
		available, err := instance.AvailableSeats()
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, flightResponse{
			Number:           instance.Number,
			Departure:        instance.DepartureAt.UTC().Format(time.RFC3339),
			Arrival:          instance.ArrivalAt.UTC().Format(time.RFC3339),
			DepartureAirport: instance.DepartureAirport,
			ArrivalAirport:   instance.ArrivalAirport,
			Cost:             instance.Cost,
			Stops:            instance.Stops,
			PlaneID:          instance.PlaneID,
			Capacity:         instance.Capacity,
			SeatsSold:        instance.SeatsSold,
			AvailableSeats:   available,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) seats(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		badRequest(c, "invalid flight number")
		return
	}
	departure, err := domain.ParseDeparture(c.Query("departure"))
	if err != nil {
		writeError(c, err)
		return
	}

	key := domain.NewFlightKey(number, departure)
	available, err := h.service.AvailableSeats(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatsResponse{
		FlightNumber:   number,
		Departure:      key.DepartureAt.Format(time.RFC3339),
		AvailableSeats: available,
	})
}
