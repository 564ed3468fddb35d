package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// MemoryRepository is an in-process schedule store used by the dev
// server (STORE_DRIVER=memory) and by tests. WithinTx runs one
// transaction at a time and restores the previous state when fn fails.
// Writes made outside a transaction wait for the running one to finish.
type MemoryRepository struct {
	st   *memoryState
	inTx bool
}

type memoryState struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data memoryData
	now  func() time.Time
}

type memoryData struct {
	nextID       uint
	barbers      map[uint]models.Barber
	services     map[uint]models.Service
	clients      map[uint]models.Client
	hours        map[uint]models.WorkingHours
	blocks       map[uint]models.ScheduleBlock
	appointments map[uint]models.Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		st: &memoryState{
			data: memoryData{
				barbers:      map[uint]models.Barber{},
				services:     map[uint]models.Service{},
				clients:      map[uint]models.Client{},
				hours:        map[uint]models.WorkingHours{},
				blocks:       map[uint]models.ScheduleBlock{},
				appointments: map[uint]models.Appointment{},
			},
			now: time.Now,
		},
	}
}

func (d *memoryData) clone() memoryData {
	c := memoryData{
		nextID:       d.nextID,
		barbers:      make(map[uint]models.Barber, len(d.barbers)),
		services:     make(map[uint]models.Service, len(d.services)),
		clients:      make(map[uint]models.Client, len(d.clients)),
		hours:        make(map[uint]models.WorkingHours, len(d.hours)),
		blocks:       make(map[uint]models.ScheduleBlock, len(d.blocks)),
		appointments: make(map[uint]models.Appointment, len(d.appointments)),
	}
	for k, v := range d.barbers {
		c.barbers[k] = v
	}
	for k, v := range d.services {
		c.services[k] = v
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.hours {
		c.hours[k] = v
	}
	for k, v := range d.blocks {
		c.blocks[k] = v
	}
	for k, v := range d.appointments {
		c.appointments[k] = v
	}
	return c
}

func (d *memoryData) id() uint {
	d.nextID++
	return d.nextID
}

func (r *MemoryRepository) lock() func() {
	r.st.mu.Lock()
	return r.st.mu.Unlock
}

// writeLock is taken by every mutator. Outside a transaction it also
// holds txMu, so a write never lands between a snapshot and its restore.
func (r *MemoryRepository) writeLock() func() {
	if r.inTx {
		return r.lock()
	}
	r.st.txMu.Lock()
	r.st.mu.Lock()
	return func() {
		r.st.mu.Unlock()
		r.st.txMu.Unlock()
	}
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (r *MemoryRepository) SeedBarber(b models.Barber) models.Barber {
	defer r.writeLock()()
	if b.ID == 0 {
		b.ID = r.st.data.id()
	}
	r.st.data.barbers[b.ID] = b
	return b
}

func (r *MemoryRepository) SeedClient(c models.Client) models.Client {
	defer r.writeLock()()
	if c.ID == 0 {
		c.ID = r.st.data.id()
	}
	r.st.data.clients[c.ID] = c
	return c
}

func (r *MemoryRepository) SeedService(s models.Service) models.Service {
	defer r.writeLock()()
	if s.ID == 0 {
		s.ID = r.st.data.id()
	}
	r.st.data.services[s.ID] = s
	return s
}

func (r *MemoryRepository) SeedWorkingHours(wh models.WorkingHours) models.WorkingHours {
	defer r.writeLock()()
	for id, cur := range r.st.data.hours {
		if cur.BarberID == wh.BarberID && cur.Weekday == wh.Weekday {
			delete(r.st.data.hours, id)
		}
	}
	if wh.ID == 0 {
		wh.ID = r.st.data.id()
	}
	r.st.data.hours[wh.ID] = wh
	return wh
}

// SeedAppointment stores ap without any overlap check.
func (r *MemoryRepository) SeedAppointment(ap models.Appointment) models.Appointment {
	defer r.writeLock()()
	if ap.ID == 0 {
		ap.ID = r.st.data.id()
	}
	r.st.data.appointments[ap.ID] = ap
	return ap
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *MemoryRepository) GetService(_ context.Context, serviceID uint) (*models.Service, error) {
	defer r.lock()()
	svc, ok := r.st.data.services[serviceID]
	if !ok || !svc.Active {
		return nil, domain.ErrRecordNotFound
	}
	return &svc, nil
}

func (r *MemoryRepository) MinServiceDuration(_ context.Context) (int, error) {
	defer r.lock()()
	min := 0
	for _, svc := range r.st.data.services {
		if !svc.Active {
			continue
		}
		if min == 0 || svc.DurationMin < min {
			min = svc.DurationMin
		}
	}
	return min, nil
}

func (r *MemoryRepository) ListServices(_ context.Context, category string) ([]models.Service, error) {
	defer r.lock()()
	out := []models.Service{}
	for _, svc := range r.st.data.services {
		if !svc.Active {
			continue
		}
		if category != "" && strings.ToLower(svc.Category) != category {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CreateService(_ context.Context, svc *models.Service) error {
	defer r.writeLock()()
	svc.ID = r.st.data.id()
	svc.CreatedAt = r.st.now()
	svc.UpdatedAt = svc.CreatedAt
	r.st.data.services[svc.ID] = *svc
	return nil
}

// --------------------------------------------------
// Barber / working hours
// --------------------------------------------------

func (r *MemoryRepository) GetBarber(_ context.Context, barberID uint) (*models.Barber, error) {
	defer r.lock()()
	b, ok := r.st.data.barbers[barberID]
	if !ok || !b.Active {
		return nil, domain.ErrRecordNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) GetWorkingHours(
	_ context.Context,
	barberID uint,
	weekday domain.Weekday,
) (*models.WorkingHours, error) {
	defer r.lock()()
	for _, wh := range r.st.data.hours {
		if wh.BarberID == barberID && wh.Weekday == int(weekday) {
			return &wh, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *MemoryRepository) ListWorkingHours(_ context.Context, barberID uint) ([]models.WorkingHours, error) {
	defer r.lock()()
	out := []models.WorkingHours{}
	for _, wh := range r.st.data.hours {
		if wh.BarberID == barberID {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (r *MemoryRepository) ReplaceWorkingHours(
	_ context.Context,
	barberID uint,
	hours []models.WorkingHours,
) error {
	defer r.writeLock()()
	for id, wh := range r.st.data.hours {
		if wh.BarberID == barberID {
			delete(r.st.data.hours, id)
		}
	}
	now := r.st.now()
	for i := range hours {
		hours[i].ID = r.st.data.id()
		hours[i].BarberID = barberID
		hours[i].CreatedAt = now
		hours[i].UpdatedAt = now
		r.st.data.hours[hours[i].ID] = hours[i]
	}
	return nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *MemoryRepository) GetClient(_ context.Context, clientID uint) (*models.Client, error) {
	defer r.lock()()
	c, ok := r.st.data.clients[clientID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) IncrementClientCompletions(_ context.Context, clientID uint) error {
	defer r.writeLock()()
	c, ok := r.st.data.clients[clientID]
	if !ok {
		return fmt.Errorf("client %d: %w", clientID, domain.ErrRecordNotFound)
	}
	c.CompletedAppointments++
	r.st.data.clients[clientID] = c
	return nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

// LockDay is a no-op: WithinTx already runs one transaction at a time.
func (r *MemoryRepository) LockDay(context.Context, uint, string) error {
	return nil
}

func (r *MemoryRepository) hydrate(ap models.Appointment) models.Appointment {
	ap.Client = r.st.data.clients[ap.ClientID]
	ap.Barber = r.st.data.barbers[ap.BarberID]
	ap.Service = r.st.data.services[ap.ServiceID]
	return ap
}

func (r *MemoryRepository) collect(keep func(models.Appointment) bool) []models.Appointment {
	out := []models.Appointment{}
	for _, ap := range r.st.data.appointments {
		if keep(ap) {
			out = append(out, r.hydrate(ap))
		}
	}
	return out
}

func byDateStart(apps []models.Appointment) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Date != apps[j].Date {
			return apps[i].Date < apps[j].Date
		}
		return apps[i].StartMinute < apps[j].StartMinute
	})
}

func (r *MemoryRepository) ListActiveAppointments(
	_ context.Context,
	barberID uint,
	date string,
) ([]models.Appointment, error) {
	defer r.lock()()
	out := r.collect(func(ap models.Appointment) bool {
		return ap.BarberID == barberID && ap.Date == date && domain.Status(ap.Status).Active()
	})
	byDateStart(out)
	return out, nil
}

func (r *MemoryRepository) ListBlocks(_ context.Context, barberID uint, date string) ([]models.ScheduleBlock, error) {
	defer r.lock()()
	out := []models.ScheduleBlock{}
	for _, b := range r.st.data.blocks {
		if b.BarberID == barberID && b.Date == date {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateAppointment rejects an active appointment overlapping another
// active one for the same barber and date, like the Postgres constraint.
func (r *MemoryRepository) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	defer r.writeLock()()

	if domain.Status(ap.Status).Active() {
		req := domain.IntervalOf(*ap)
		for _, cur := range r.st.data.appointments {
			if cur.BarberID != ap.BarberID || cur.Date != ap.Date {
				continue
			}
			if !domain.Status(cur.Status).Active() {
				continue
			}
			if req.Overlaps(domain.IntervalOf(cur)) {
				return domain.ErrSlotTaken
			}
		}
	}

	ap.ID = r.st.data.id()
	ap.CreatedAt = r.st.now()
	ap.UpdatedAt = ap.CreatedAt
	stored := *ap
	stored.Barber, stored.Client, stored.Service = models.Barber{}, models.Client{}, models.Service{}
	r.st.data.appointments[ap.ID] = stored
	return nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *MemoryRepository) GetAppointment(_ context.Context, appointmentID uint) (*models.Appointment, error) {
	defer r.lock()()
	ap, ok := r.st.data.appointments[appointmentID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &ap, nil
}

func (r *MemoryRepository) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	defer r.writeLock()()
	if _, ok := r.st.data.appointments[ap.ID]; !ok {
		return domain.ErrRecordNotFound
	}
	ap.UpdatedAt = r.st.now()
	stored := *ap
	stored.Barber, stored.Client, stored.Service = models.Barber{}, models.Client{}, models.Service{}
	r.st.data.appointments[ap.ID] = stored
	return nil
}

// --------------------------------------------------
// Blocks
// --------------------------------------------------

func (r *MemoryRepository) CreateBlock(_ context.Context, b *models.ScheduleBlock) error {
	defer r.writeLock()()
	b.ID = r.st.data.id()
	b.CreatedAt = r.st.now()
	r.st.data.blocks[b.ID] = *b
	return nil
}

func (r *MemoryRepository) GetBlock(_ context.Context, blockID uint) (*models.ScheduleBlock, error) {
	defer r.lock()()
	b, ok := r.st.data.blocks[blockID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) DeleteBlock(_ context.Context, blockID uint) error {
	defer r.writeLock()()
	if _, ok := r.st.data.blocks[blockID]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(r.st.data.blocks, blockID)
	return nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *MemoryRepository) ListAppointmentsForPeriod(
	_ context.Context,
	barberID uint,
	fromDate string,
	toDate string,
) ([]models.Appointment, error) {
	defer r.lock()()
	out := r.collect(func(ap models.Appointment) bool {
		return ap.BarberID == barberID && ap.Date >= fromDate && ap.Date < toDate
	})
	byDateStart(out)
	return out, nil
}

func (r *MemoryRepository) ListAppointmentsForClient(_ context.Context, clientID uint) ([]models.Appointment, error) {
	defer r.lock()()
	out := r.collect(func(ap models.Appointment) bool { return ap.ClientID == clientID })
	byDateStart(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *MemoryRepository) ListActiveAppointmentsOn(_ context.Context, date string) ([]models.Appointment, error) {
	defer r.lock()()
	out := r.collect(func(ap models.Appointment) bool {
		return ap.Date == date && domain.Status(ap.Status).Active()
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].BarberID != out[j].BarberID {
			return out[i].BarberID < out[j].BarberID
		}
		return out[i].StartMinute < out[j].StartMinute
	})
	return out, nil
}

// --------------------------------------------------
// Reconciliation
// --------------------------------------------------

func (r *MemoryRepository) ListElapsed(
	_ context.Context,
	today string,
	nowMinute int,
	limit int,
) ([]models.Appointment, error) {
	defer r.lock()()
	out := []models.Appointment{}
	for _, ap := range r.st.data.appointments {
		if domain.Status(ap.Status).Active() && domain.Elapsed(ap, today, domain.ClockTime(nowMinute)) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].EndMinute != out[j].EndMinute {
			return out[i].EndMinute < out[j].EndMinute
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListUncountedCompleted(_ context.Context, limit int) ([]models.Appointment, error) {
	defer r.lock()()
	out := []models.Appointment{}
	for _, ap := range r.st.data.appointments {
		if ap.Status == string(domain.StatusCompleted) && !ap.CompletionCounted {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) CompleteIfActive(_ context.Context, appointmentID uint, at time.Time) (bool, error) {
	defer r.writeLock()()
	ap, ok := r.st.data.appointments[appointmentID]
	if !ok || !domain.Status(ap.Status).Active() {
		return false, nil
	}
	ap.Status = string(domain.StatusCompleted)
	ap.CompletedAt = &at
	ap.UpdatedAt = r.st.now()
	r.st.data.appointments[appointmentID] = ap
	return true, nil
}

func (r *MemoryRepository) MarkCompletionCounted(_ context.Context, appointmentID uint) (bool, error) {
	defer r.writeLock()()
	ap, ok := r.st.data.appointments[appointmentID]
	if !ok || ap.Status != string(domain.StatusCompleted) || ap.CompletionCounted {
		return false, nil
	}
	ap.CompletionCounted = true
	r.st.data.appointments[appointmentID] = ap
	return true, nil
}

// --------------------------------------------------
// Tx
// --------------------------------------------------

func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.st.txMu.Lock()
	defer r.st.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	snapshot := r.st.data.clone()
	r.st.mu.Unlock()

	if err := fn(&MemoryRepository{st: r.st, inTx: true}); err != nil {
		r.st.mu.Lock()
		r.st.data = snapshot
		r.st.mu.Unlock()
		return err
	}
	return nil
}

var _ domain.Repository = (*MemoryRepository)(nil)
