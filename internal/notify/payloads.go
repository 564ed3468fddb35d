package notify

import (
	"strconv"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type AppointmentPayload struct {
	AppointmentID uint   `json:"appointment_id"`
	BarberID      uint   `json:"barber_id"`
	ClientID      uint   `json:"client_id"`
	ServiceID     uint   `json:"service_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        string `json:"status"`
}

type StatusChangedPayload struct {
	AppointmentPayload
	From  string `json:"from"`
	Actor string `json:"actor"`
}

// ReminderPayload carries what a messaging gateway needs to reach the
// client.
type ReminderPayload struct {
	AppointmentPayload
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email,omitempty"`
	BarberName  string `json:"barber_name"`
	ServiceName string `json:"service_name"`
}

func clock(m int) string {
	return time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}

func appointmentKey(ap models.Appointment) string {
	return strconv.FormatUint(uint64(ap.ID), 10)
}

func payloadOf(ap models.Appointment) AppointmentPayload {
	return AppointmentPayload{
		AppointmentID: ap.ID,
		BarberID:      ap.BarberID,
		ClientID:      ap.ClientID,
		ServiceID:     ap.ServiceID,
		Date:          ap.Date,
		Start:         clock(ap.StartMinute),
		End:           clock(ap.EndMinute),
		Status:        ap.Status,
	}
}

func AppointmentCreated(ap models.Appointment, at time.Time) (Event, error) {
	return NewEvent(EventAppointmentCreated, appointmentKey(ap), payloadOf(ap), at)
}

func AppointmentStatusChanged(ap models.Appointment, from, actor string, at time.Time) (Event, error) {
	return NewEvent(EventAppointmentStatusChanged, appointmentKey(ap), StatusChangedPayload{
		AppointmentPayload: payloadOf(ap),
		From:               from,
		Actor:              actor,
	}, at)
}

// AppointmentReminder expects Client, Barber and Service to be loaded.
func AppointmentReminder(ap models.Appointment, at time.Time) (Event, error) {
	return NewEvent(EventAppointmentReminder, appointmentKey(ap), ReminderPayload{
		AppointmentPayload: payloadOf(ap),
		ClientName:         ap.Client.Name,
		ClientPhone:        ap.Client.Phone,
		ClientEmail:        ap.Client.Email,
		BarberName:         ap.Barber.Name,
		ServiceName:        ap.Service.Name,
	}, at)
}
