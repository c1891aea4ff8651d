package main

import (
	"fmt"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/service/booking"
	"github.com/Domenick1991/airops/internal/service/flights"
	"github.com/Domenick1991/airops/internal/service/records"
	"github.com/Domenick1991/airops/internal/service/reports"
	"github.com/spf13/cobra"
)

func newMigrateCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the schema is applied while opening the session
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newPlaneCommand(s *session) *cobra.Command {
	var plane domain.Plane
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := records.NewService(s.store, records.WithLogger(s.logger)).AddPlane(cmd.Context(), plane); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plane %d added\n", plane.ID)
			return nil
		},
	}
	add.Flags().IntVar(&plane.ID, "id", 0, "plane id")
	add.Flags().StringVar(&plane.Make, "make", "", "manufacturer")
	add.Flags().StringVar(&plane.Model, "model", "", "model")
	add.Flags().IntVar(&plane.Age, "age", 0, "age in years")
	add.Flags().IntVar(&plane.Seats, "seats", 0, "seat capacity")

	cmd := &cobra.Command{Use: "plane", Short: "Manage planes"}
	cmd.AddCommand(add)
	return cmd
}

func newPilotCommand(s *session) *cobra.Command {
	var pilot domain.Pilot
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a pilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := records.NewService(s.store, records.WithLogger(s.logger)).AddPilot(cmd.Context(), pilot); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pilot %d added\n", pilot.ID)
			return nil
		},
	}
	add.Flags().IntVar(&pilot.ID, "id", 0, "pilot id")
	add.Flags().StringVar(&pilot.Name, "name", "", "full name")
	add.Flags().StringVar(&pilot.Nationality, "nationality", "", "nationality")

	cmd := &cobra.Command{Use: "pilot", Short: "Manage pilots"}
	cmd.AddCommand(add)
	return cmd
}

func newFlightCommand(s *session) *cobra.Command {
	var (
		flight             domain.Flight
		departure, arrival string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Schedule a flight instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if flight.DepartureAt, err = domain.ParseDeparture(departure); err != nil {
				return err
			}
			if flight.ArrivalAt, err = domain.ParseDeparture(arrival); err != nil {
				return err
			}
			if err := records.NewService(s.store, records.WithLogger(s.logger)).AddFlight(cmd.Context(), flight); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flight %s added\n", flight.Key())
			return nil
		},
	}
	add.Flags().IntVar(&flight.Number, "number", 0, "flight number")
	add.Flags().Int64Var(&flight.Cost, "cost", 0, "ticket cost")
	add.Flags().IntVar(&flight.SeatsSold, "sold", 0, "seats already sold")
	add.Flags().IntVar(&flight.Stops, "stops", 0, "number of stops")
	add.Flags().StringVar(&departure, "departure", "", "departure, "+domain.DepartureLayout+" (UTC)")
	add.Flags().StringVar(&arrival, "arrival", "", "arrival, "+domain.DepartureLayout+" (UTC)")
	add.Flags().StringVar(&flight.DepartureAirport, "from", "", "departure airport code")
	add.Flags().StringVar(&flight.ArrivalAirport, "to", "", "arrival airport code")
	add.Flags().IntVar(&flight.PlaneID, "plane", 0, "plane id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List flight instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := flights.NewFlightService(s.store, nil, flights.WithLogger(s.logger)).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, instance := range instances {
				available, err := instance.AvailableSeats()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-6d %s  %s->%s  %d/%d sold  %d free\n",
					instance.Number, instance.DepartureAt.Format(domain.DepartureLayout),
					instance.DepartureAirport, instance.ArrivalAirport,
					instance.SeatsSold, instance.Capacity, available)
			}
			return nil
		},
	}

	cmd := &cobra.Command{Use: "flight", Short: "Manage flight instances"}
	cmd.AddCommand(add, list)
	return cmd
}

func newTechnicianCommand(s *session) *cobra.Command {
	var technician domain.Technician
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a technician",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := records.NewService(s.store, records.WithLogger(s.logger)).AddTechnician(cmd.Context(), technician); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "technician %d added\n", technician.ID)
			return nil
		},
	}
	add.Flags().IntVar(&technician.ID, "id", 0, "technician id")
	add.Flags().StringVar(&technician.FullName, "name", "", "full name")

	cmd := &cobra.Command{Use: "technician", Short: "Manage technicians"}
	cmd.AddCommand(add)
	return cmd
}

func newRepairCommand(s *session) *cobra.Command {
	var (
		repair domain.Repair
		date   string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a repair",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if repair.RepairDate, err = domain.ParseDate(date); err != nil {
				return err
			}
			if err := records.NewService(s.store, records.WithLogger(s.logger)).AddRepair(cmd.Context(), repair); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "repair %d added\n", repair.ID)
			return nil
		},
	}
	add.Flags().IntVar(&repair.ID, "id", 0, "repair id")
	add.Flags().IntVar(&repair.PlaneID, "plane", 0, "plane id")
	add.Flags().StringVar(&date, "date", "", "repair date, "+domain.DateLayout)

	cmd := &cobra.Command{Use: "repair", Short: "Manage repairs"}
	cmd.AddCommand(add)
	return cmd
}

func newBookCommand(s *session) *cobra.Command {
	var (
		req                  booking.Request
		departure, rawStatus string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Create a reservation or move it to another status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Departure, err = domain.ParseDeparture(departure); err != nil {
				return err
			}
			if req.Status, err = domain.ParseReservationStatus(rawStatus); err != nil {
				return err
			}
			service := booking.NewBookingService(s.store, booking.WithLogger(s.logger))
			result, err := service.Book(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, bookingOutput{
				ReservationNumber: result.Reservation.Number,
				CustomerID:        result.Reservation.CustomerID,
				Flight:            result.Reservation.Flight.String(),
				Status:            result.Reservation.Status.Name(),
				PreviousStatus:    result.PreviousStatus.Name(),
				AvailableSeats:    result.AvailableSeats,
				Downgraded:        result.Downgraded,
				Outcome:           string(result.Outcome),
			})
		},
	}
	cmd.Flags().IntVar(&req.CustomerID, "customer", 0, "customer id")
	cmd.Flags().IntVar(&req.FlightNumber, "flight", 0, "flight number")
	cmd.Flags().StringVar(&departure, "departure", "", "departure, "+domain.DepartureLayout+" (UTC)")
	cmd.Flags().IntVar(&req.ReservationNumber, "reservation", 0, "reservation number for a new booking")
	cmd.Flags().StringVar(&rawStatus, "status", "", "W, R or C")
	return cmd
}

type bookingOutput struct {
	ReservationNumber int    `json:"reservation_number"`
	CustomerID        int    `json:"customer_id"`
	Flight            string `json:"flight"`
	Status            string `json:"status"`
	PreviousStatus    string `json:"previous_status,omitempty"`
	AvailableSeats    int    `json:"available_seats"`
	Downgraded        bool   `json:"downgraded"`
	Outcome           string `json:"outcome"`
}

func newSeatsCommand(s *session) *cobra.Command {
	var (
		number    int
		departure string
	)
	cmd := &cobra.Command{
		Use:   "seats",
		Short: "Show available seats on a flight instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := domain.ParseDeparture(departure)
			if err != nil {
				return err
			}
			key := domain.NewFlightKey(number, at)
			available, err := flights.NewFlightService(s.store, nil).AvailableSeats(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d seats available\n", key, available)
			return nil
		},
	}
	cmd.Flags().IntVar(&number, "flight", 0, "flight number")
	cmd.Flags().StringVar(&departure, "departure", "", "departure, "+domain.DepartureLayout+" (UTC)")
	return cmd
}

func newReportCommand(s *session) *cobra.Command {
	service := func() *reports.Service {
		return reports.NewService(s.store, flights.NewFlightService(s.store, nil))
	}

	perPlane := &cobra.Command{
		Use:   "repairs-per-plane",
		Short: "Repairs per plane, most repaired first",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := service().RepairsPerPlane(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range counts {
				fmt.Fprintf(cmd.OutOrStdout(), "plane %d\t%d\n", c.PlaneID, c.Repairs)
			}
			return nil
		},
	}

	perYear := &cobra.Command{
		Use:   "repairs-per-year",
		Short: "Repairs per year, fewest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := service().RepairsPerYear(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range counts {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", c.Year, c.Repairs)
			}
			return nil
		},
	}

	var (
		number    int
		rawStatus string
	)
	passengers := &cobra.Command{
		Use:   "passengers",
		Short: "Count passengers of a flight number in a status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseReservationStatus(rawStatus)
			if err != nil {
				return err
			}
			count, err := service().PassengerCount(cmd.Context(), number, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flight %d %s: %d\n", number, status.Name(), count)
			return nil
		},
	}
	passengers.Flags().IntVar(&number, "flight", 0, "flight number")
	passengers.Flags().StringVar(&rawStatus, "status", "", "W, R or C")

	cmd := &cobra.Command{Use: "report", Short: "Read-only reports"}
	cmd.AddCommand(perPlane, perYear, passengers)
	return cmd
}
