package api

import (
	"net/http"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/records"
	"github.com/gin-gonic/gin"
)

type RecordsHandler struct {
	service records.RecordsUseCase
}

type planeRequest struct {
	ID    int    `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Age   int    `json:"age"`
	Seats int    `json:"seats"`
}

type pilotRequest struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
}

type flightRequest struct {
	Number           int    `json:"flight_number"`
	Cost             int64  `json:"cost"`
	SeatsSold        int    `json:"seats_sold"`
	Stops            int    `json:"stops"`
	Departure        string `json:"departure"`
	Arrival          string `json:"arrival"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	PlaneID          int    `json:"plane_id"`
}

type technicianRequest struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

type repairRequest struct {
	ID         int    `json:"id"`
	PlaneID    int    `json:"plane_id"`
	RepairDate string `json:"repair_date"`
}

func NewRecordsHandler(service records.RecordsUseCase) *RecordsHandler {
	return &RecordsHandler{service: service}
}

func (h *RecordsHandler) Register(router *gin.RouterGroup) {
	router.POST("/planes", h.addPlane)
	router.POST("/pilots", h.addPilot)
	router.POST("/flights", h.addFlight)
	router.POST("/technicians", h.addTechnician)
	router.POST("/repairs", h.addRepair)
}

func (h *RecordsHandler) addPlane(c *gin.Context) {
	var req planeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	plane := domain.Plane{ID: req.ID, Make: req.Make, Model: req.Model, Age: req.Age, Seats: req.Seats}
	if err := h.service.AddPlane(c.Request.Context(), plane); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RecordsHandler) addPilot(c *gin.Context) {
	var req pilotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.AddPilot(c.Request.Context(), domain.Pilot{ID: req.ID, Name: req.Name, Nationality: req.Nationality}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RecordsHandler) addFlight(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	departure, err := domain.ParseDeparture(req.Departure)
	if err != nil {
		writeError(c, err)
		return
	}
	arrival, err := domain.ParseDeparture(req.Arrival)
	if err != nil {
		writeError(c, err)
		return
	}

	flight := domain.Flight{
		Number:           req.Number,
		Cost:             req.Cost,
		SeatsSold:        req.SeatsSold,
		Stops:            req.Stops,
		DepartureAt:      departure,
		ArrivalAt:        arrival,
		DepartureAirport: req.DepartureAirport,
		ArrivalAirport:   req.ArrivalAirport,
		PlaneID:          req.PlaneID,
	}
	if err := h.service.AddFlight(c.Request.Context(), flight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RecordsHandler) addTechnician(c *gin.Context) {
	var req technicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.AddTechnician(c.Request.Context(), domain.Technician{ID: req.ID, FullName: req.FullName}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RecordsHandler) addRepair(c *gin.Context) {
	var req repairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := domain.ParseDate(req.RepairDate)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.service.AddRepair(c.Request.Context(), domain.Repair{ID: req.ID, PlaneID: req.PlaneID, RepairDate: date}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}
