package models

import "time"

// Client is the person booking. CompletedAppointments is only ever
// incremented by the reconciliation job.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CompletedAppointments int `gorm:"not null;default:0" json:"completed_appointments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
