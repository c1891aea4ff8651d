package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/reports"
	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	service reports.ReportsUseCase
}

type passengerCountResponse struct {
	FlightNumber int    `json:"flight_number"`
	Status       string `json:"status"`
	Passengers   int    `json:"passengers"`
}

func NewReportsHandler(service reports.ReportsUseCase) *ReportsHandler {
	return &ReportsHandler{service: service}
}

func (h *ReportsHandler) Register(router *gin.RouterGroup) {
	router.GET("/repairs/planes", h.repairsPerPlane)
	router.GET("/repairs/years", h.repairsPerYear)
	router.GET("/passengers", h.passengers)
}

func (h *ReportsHandler) repairsPerPlane(c *gin.Context) {
	counts, err := h.service.RepairsPerPlane(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *ReportsHandler) repairsPerYear(c *gin.Context) {
	counts, err := h.service.RepairsPerYear(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *ReportsHandler) passengers(c *gin.Context) {
	number, err := strconv.Atoi(c.Query("flight"))
	if err != nil {
		badRequest(c, "invalid flight number")
		return
	}
	status, err := domain.ParseReservationStatus(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}

	count, err := h.service.PassengerCount(c.Request.Context(), number, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, passengerCountResponse{FlightNumber: number, Status: string(status), Passengers: count})
}
