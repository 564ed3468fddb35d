package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func sampleAppointment() models.Appointment {
	return models.Appointment{
		ID:          42,
		BarberID:    1,
		ClientID:    9,
		ServiceID:   3,
		Date:        "2026-03-10",
		StartMinute: 9 * 60,
		EndMinute:   9*60 + 45,
		Status:      "confirmed",
		Client:      models.Client{Name: "Ana", Phone: "555-0101"},
		Barber:      models.Barber{Name: "Luis"},
		Service:     models.Service{Name: "Corte"},
	}
}

func TestAppointmentCreatedEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.FixedZone("x", -6*3600))
	ev, err := AppointmentCreated(sampleAppointment(), at)
	if err != nil {
		t.Fatalf("AppointmentCreated: %v", err)
	}
	if _, err := uuid.Parse(ev.ID); err != nil {
		t.Fatalf("event id %q is not a uuid", ev.ID)
	}
	if ev.Type != EventAppointmentCreated || ev.Key != "42" {
		t.Fatalf("type/key = %s/%s", ev.Type, ev.Key)
	}
	if ev.OccurredAt.Location() != time.UTC {
		t.Fatalf("occurred_at not UTC")
	}

	var p AppointmentPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Start != "09:00" || p.End != "09:45" || p.Date != "2026-03-10" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestReminderCarriesContact(t *testing.T) {
	ev, err := AppointmentReminder(sampleAppointment(), time.Now())
	if err != nil {
		t.Fatalf("AppointmentReminder: %v", err)
	}
	var p ReminderPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.ClientPhone != "555-0101" || p.BarberName != "Luis" || p.ServiceName != "Corte" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestToMessageHeaders(t *testing.T) {
	ev, _ := AppointmentStatusChanged(sampleAppointment(), "pending", "provider", time.Now())
	msg, err := toMessage(context.Background(), ev)
	if err != nil {
		t.Fatalf("toMessage: %v", err)
	}
	if string(msg.Key) != "42" {
		t.Fatalf("key = %s", msg.Key)
	}
	c := &headerCarrier{headers: msg.Headers}
	if c.Get("event_id") != ev.ID || c.Get("event_type") != EventAppointmentStatusChanged {
		t.Fatalf("headers = %v", c.Keys())
	}

	c.Set("event_type", "other")
	if c.Get("event_type") != "other" || len(c.Keys()) != len(msg.Headers) {
		t.Fatalf("Set should overwrite in place")
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zap.NewNop())
	ev, _ := AppointmentCreated(sampleAppointment(), time.Now())
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
