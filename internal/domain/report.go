package domain

type PlaneRepairCount struct {
	PlaneID int `json:"plane_id"`
	Repairs int `json:"repairs"`
}

type YearRepairCount struct {
	Year    int `json:"year"`
	Repairs int `json:"repairs"`
}
