package domain

import "time"

type Plane struct {
	ID    int
	Make  string
	Model string
	Age   int
	Seats int
}

type Pilot struct {
	ID          int
	Name        string
	Nationality string
}

type Technician struct {
	ID       int
	FullName string
}

type Repair struct {
	ID         int
	PlaneID    int
	RepairDate time.Time
}
