package appointment

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active statuses occupy the barber's schedule.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses lists the statuses that take part in overlap checks.
func ActiveStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed)}
}

// ===============================
// Actors
// ===============================

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"

	// RoleSystem is used by background jobs, never by API callers.
	RoleSystem Role = "system"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleClient, RoleProvider, RoleAdmin:
		return r, true
	}
	return "", false
}

// Actor is who asks for a transition. ID is the client id for clients
// and the barber id for providers.
type Actor struct {
	ID   uint
	Role Role
}

func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// ===============================
// Validations
// ===============================

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition checks the state graph for a move requested by role.
// Only the system may finalize an appointment still pending.
func CanTransition(from, to Status, role Role) error {
	if from.Terminal() {
		return httperr.InvalidTransition(string(from), string(to))
	}
	if role == RoleSystem && from == StatusPending && to == StatusCompleted {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.InvalidTransition(string(from), string(to))
}

// Authorize checks that actor may move ap to target. It does not look at
// the state graph.
func Authorize(actor Actor, ap *models.Appointment, target Status) error {
	switch actor.Role {
	case RoleAdmin, RoleSystem:
		return nil
	case RoleProvider:
		if ap.BarberID != actor.ID {
			return httperr.Forbidden("forbidden", "appointment belongs to another barber")
		}
		return nil
	case RoleClient:
		if ap.ClientID != actor.ID {
			return httperr.Forbidden("forbidden", "appointment belongs to another client")
		}
		if target != StatusCancelled {
			return httperr.Forbidden("forbidden", "clients may only cancel")
		}
		return nil
	}
	return httperr.Forbidden("forbidden", "unknown role")
}

// InitialStatus is the status given to new bookings when no policy says
// otherwise.
func InitialStatus() Status {
	return StatusConfirmed
}

// CanManageBarber checks that actor may change or list the schedule of
// barberID: admins always, providers only their own.
func CanManageBarber(actor Actor, barberID uint) error {
	switch actor.Role {
	case RoleAdmin, RoleSystem:
		return nil
	case RoleProvider:
		if actor.ID == barberID {
			return nil
		}
		return httperr.Forbidden("forbidden", "schedule belongs to another barber")
	}
	return httperr.Forbidden("forbidden", "role "+string(actor.Role)+" cannot manage schedules")
}
