package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airops/internal/domain"
	"github.com/Domenick1991/airops/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type RecordsUseCase interface {
	AddPlane(ctx context.Context, plane domain.Plane) error
	AddPilot(ctx context.Context, pilot domain.Pilot) error
	AddFlight(ctx context.Context, flight domain.Flight) error
	AddTechnician(ctx context.Context, technician domain.Technician) error
	AddRepair(ctx context.Context, repair domain.Repair) error
}

// Service is the data-entry side of the system: validated inserts with no
// booking semantics.
type Service struct {
	store    repository.Store
	validate *validator.Validate
	logger   *zap.Logger
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(store repository.Store, opts ...Option) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidationMapRules(map[string]string{
		"ID":    "gt=0",
		"Make":  "required,max=32",
		"Model": "required,max=64",
		"Age":   "gte=0,lte=30",
		"Seats": "gte=1,lte=500",
	}, domain.Plane{})
	validate.RegisterStructValidationMapRules(map[string]string{
		"ID":          "gt=0",
		"Name":        "required,max=128",
		"Nationality": "required,max=24",
	}, domain.Pilot{})
	validate.RegisterStructValidationMapRules(map[string]string{
		"Number":           "gt=0",
		"Cost":             "gt=0",
		"SeatsSold":        "gte=0",
		"Stops":            "gte=0",
		"DepartureAt":      "required",
		"ArrivalAt":        "required,gtfield=DepartureAt",
		"ArrivalAirport":   "required,max=5",
		"DepartureAirport": "required,max=5",
		"PlaneID":          "gt=0",
	}, domain.Flight{})
	validate.RegisterStructValidationMapRules(map[string]string{
		"ID":       "gt=0",
		"FullName": "required,max=128",
	}, domain.Technician{})
	validate.RegisterStructValidationMapRules(map[string]string{
		"ID":         "gt=0",
		"PlaneID":    "gt=0",
		"RepairDate": "required",
	}, domain.Repair{})

	service := &Service{store: store, validate: validate, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) AddPlane(ctx context.Context, plane domain.Plane) error {
	plane.Make = strings.TrimSpace(plane.Make)
	plane.Model = strings.TrimSpace(plane.Model)
	if err := s.check(plane); err != nil {
		return err
	}
	if err := s.store.InsertPlane(ctx, plane); err != nil {
		return err
	}
	s.logger.Info("plane added", zap.Int("plane_id", plane.ID), zap.Int("seats", plane.Seats))
	return nil
}

func (s *Service) AddPilot(ctx context.Context, pilot domain.Pilot) error {
	pilot.Name = strings.TrimSpace(pilot.Name)
	pilot.Nationality = strings.TrimSpace(pilot.Nationality)
	if err := s.check(pilot); err != nil {
		return err
	}
	if err := s.store.InsertPilot(ctx, pilot); err != nil {
		return err
	}
	s.logger.Info("pilot added", zap.Int("pilot_id", pilot.ID))
	return nil
}

// AddFlight also requires the plane to exist and to have room for the seats
// already sold.
func (s *Service) AddFlight(ctx context.Context, flight domain.Flight) error {
	flight.ArrivalAirport = strings.ToUpper(strings.TrimSpace(flight.ArrivalAirport))
	flight.DepartureAirport = strings.ToUpper(strings.TrimSpace(flight.DepartureAirport))
	flight.DepartureAt = flight.DepartureAt.UTC()
	flight.ArrivalAt = flight.ArrivalAt.UTC()
	if err := s.check(flight); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		plane, err := tx.GetPlane(ctx, flight.PlaneID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			return err
		}
		if flight.SeatsSold > plane.Seats {
			return fmt.Errorf("%w: %d seats sold on a %d seat plane", domain.ErrValidation, flight.SeatsSold, plane.Seats)
		}
		return tx.InsertFlight(ctx, flight)
	})
	if err != nil {
		return err
	}
	s.logger.Info("flight added", zap.Stringer("flight", flight.Key()), zap.Int("plane_id", flight.PlaneID))
	return nil
}

func (s *Service) AddTechnician(ctx context.Context, technician domain.Technician) error {
	technician.FullName = strings.TrimSpace(technician.FullName)
	if err := s.check(technician); err != nil {
		return err
	}
	if err := s.store.InsertTechnician(ctx, technician); err != nil {
		return err
	}
	s.logger.Info("technician added", zap.Int("technician_id", technician.ID))
	return nil
}

func (s *Service) AddRepair(ctx context.Context, repair domain.Repair) error {
	repair.RepairDate = repair.RepairDate.UTC()
	if err := s.check(repair); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.GetPlane(ctx, repair.PlaneID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			return err
		}
		return tx.InsertRepair(ctx, repair)
	})
	if err != nil {
		return err
	}
	s.logger.Info("repair added", zap.Int("repair_id", repair.ID), zap.Int("plane_id", repair.PlaneID))
	return nil
}

func (s *Service) check(record any) error {
	err := s.validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
}

var _ RecordsUseCase = (*Service)(nil)
