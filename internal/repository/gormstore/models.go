package gormstore

import "time"

type Plane struct {
	ID    int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Make  string `gorm:"column:make;size:32;not null"`
	Model string `gorm:"column:model;size:64;not null"`
	Age   int    `gorm:"column:age;not null;check:age >= 0 AND age <= 30"`
	Seats int    `gorm:"column:seats;not null;check:seats >= 1 AND seats <= 500"`
}

func (Plane) TableName() string { return "planes" }

type Pilot struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:full_name;size:128;not null"`
	Nationality string `gorm:"column:nationality;size:24;not null"`
}

func (Pilot) TableName() string { return "pilots" }

type Technician struct {
	ID       int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	FullName string `gorm:"column:full_name;size:128;not null"`
}

func (Technician) TableName() string { return "technicians" }

// Flight is keyed by (fnum, actual_departure_date): flight numbers repeat across dates.
type Flight struct {
	Number           int       `gorm:"column:fnum;primaryKey;autoIncrement:false"`
	DepartureAt      time.Time `gorm:"column:actual_departure_date;primaryKey"`
	Cost             int64     `gorm:"column:cost;not null;check:cost > 0"`
	SeatsSold        int       `gorm:"column:num_sold;not null;default:0;check:num_sold >= 0"`
	Stops            int       `gorm:"column:num_stops;not null;default:0;check:num_stops >= 0"`
	ArrivalAt        time.Time `gorm:"column:actual_arrival_date;not null"`
	ArrivalAirport   string    `gorm:"column:arrival_airport;size:5;not null"`
	DepartureAirport string    `gorm:"column:departure_airport;size:5;not null"`
	PlaneID          int       `gorm:"column:plane_id;not null;index"`
	Plane            Plane     `gorm:"foreignKey:PlaneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Flight) TableName() string { return "flights" }

type Reservation struct {
	Number       int       `gorm:"column:rnum;primaryKey;autoIncrement:false"`
	CustomerID   int       `gorm:"column:cid;not null;uniqueIndex:reservations_customer_flight_key,priority:1"`
	FlightNumber int       `gorm:"column:fnum;not null;uniqueIndex:reservations_customer_flight_key,priority:2;index:reservations_fnum_status_idx,priority:1"`
	DepartureAt  time.Time `gorm:"column:departure_date;not null;uniqueIndex:reservations_customer_flight_key,priority:3"`
	Status       string    `gorm:"column:status;size:1;not null;index:reservations_fnum_status_idx,priority:2"`
	Flight       Flight    `gorm:"foreignKey:FlightNumber,DepartureAt;references:Number,DepartureAt;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Reservation) TableName() string { return "reservations" }

type Repair struct {
	ID         int       `gorm:"column:rid;primaryKey;autoIncrement:false"`
	PlaneID    int       `gorm:"column:plane_id;not null;index"`
	RepairDate time.Time `gorm:"column:repair_date;not null"`
	Plane      Plane     `gorm:"foreignKey:PlaneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Repair) TableName() string { return "repairs" }

type flightInstanceRow struct {
	Flight
	Capacity int `gorm:"column:capacity"`
}

// Models lists every table in migration order.
func Models() []any {
	return []any{&Plane{}, &Pilot{}, &Technician{}, &Flight{}, &Reservation{}, &Repair{}}
}
