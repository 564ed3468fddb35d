package dto

type AppointmentListDTO struct {
	ID          uint    `json:"id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Status      string  `json:"status"`
	ClientID    uint    `json:"client_id"`
	ClientName  string  `json:"client_name,omitempty"`
	BarberID    uint    `json:"barber_id"`
	BarberName  string  `json:"barber_name,omitempty"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
}

// DayTotals summarizes one barber's day by status.
type DayTotals struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	Revenue   float64 `json:"revenue"`
}

type DayScheduleDTO struct {
	BarberID     uint                 `json:"barber_id"`
	Date         string               `json:"date"`
	Appointments []AppointmentListDTO `json:"appointments"`
	Totals       DayTotals            `json:"totals"`
}
