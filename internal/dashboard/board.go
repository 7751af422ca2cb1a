package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/fetch"
	"go.uber.org/zap"
)

// Source is the slice of the data service a board needs.
type Source interface {
	Appointments(ctx context.Context, q appointment.ListQuery) ([]appointment.Appointment, error)
	UpdateAppointment(ctx context.Context, cmd appointment.UpdateStatusCommand) error
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// LoadState is what a caller shows while the collection is not ready.
type LoadState struct {
	Phase     Phase     `json:"phase"`
	Message   string    `json:"message,omitempty"`
	Retryable bool      `json:"retryable"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
}

// UpdateResult reports what happened to an optimistic status change.
type UpdateResult struct {
	AppointmentID string             `json:"appointmentId"`
	Previous      appointment.Status `json:"previous"`
	Requested     appointment.Status `json:"requested"`
	Applied       bool               `json:"applied"`
	Reverted      bool               `json:"reverted"`
	Err           error              `json:"-"`
}

type override struct {
	status appointment.Status
	seq    uint64
}

type BoardConfig struct {
	// StrictTransitions limits changes to the transitions a dashboard offers.
	StrictTransitions bool
	RecentActivity    int
	Location          *time.Location
}

// Board is one doctor's dashboard. Refreshes are generation-tagged so a slow
// response never replaces a newer one. Status changes are applied
// optimistically and held in an override map until the write settles. A
// failed write falls back to the last acknowledged status.
type Board struct {
	doctorID int
	source   Source
	cfg      BoardConfig
	log      *zap.Logger
	tracker  fetch.Tracker

	mu        sync.Mutex
	appts     []appointment.Appointment
	overrides map[string]override
	committed map[string]uint64
	seq       uint64
	state     LoadState
}

func NewBoard(doctorID int, source Source, cfg BoardConfig, log *zap.Logger) *Board {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Board{
		doctorID:  doctorID,
		source:    source,
		cfg:       cfg,
		log:       log,
		overrides: make(map[string]override),
		committed: make(map[string]uint64),
		state:     LoadState{Phase: PhaseIdle},
	}
}

func (b *Board) DoctorID() int { return b.doctorID }

// Refresh reloads the doctor's appointments. It returns fetch.ErrStale when
// a newer Refresh was issued while this one was in flight; the result is
// then discarded.
func (b *Board) Refresh(ctx context.Context) error {
	tok := b.tracker.Next()
	b.mu.Lock()
	b.state.Phase = PhaseLoading
	b.mu.Unlock()

	doctorID := b.doctorID
	appts, err := b.source.Appointments(ctx, appointment.ListQuery{DoctorID: &doctorID})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.tracker.Check(tok); err != nil {
		b.log.Debug("discarding stale dashboard response", zap.Int("doctor_id", b.doctorID))
		return err
	}
	if err != nil {
		b.state = LoadState{Phase: PhaseError, Message: err.Error(), Retryable: true, LoadedAt: b.state.LoadedAt}
		return fmt.Errorf("loading appointments for doctor %d: %w", b.doctorID, err)
	}

	b.appts = appts
	b.state = LoadState{Phase: PhaseReady, LoadedAt: time.Now()}
	return nil
}

func (b *Board) State() LoadState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Appointments returns the collection with in-flight status changes applied.
func (b *Board) Appointments() []appointment.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.effective()
}

func (b *Board) Views(now time.Time) Views {
	return Compute(b.Appointments(), now, b.cfg.Location, b.cfg.RecentActivity)
}

// effective applies overrides to a copy of the collection. Callers hold mu.
func (b *Board) effective() []appointment.Appointment {
	out := slices.Clone(b.appts)
	for i := range out {
		if o, ok := b.overrides[out[i].ID]; ok {
			out[i].Status = o.status
		}
	}
	return out
}

// UpdateStatus changes one appointment's status. The change is visible
// immediately; if the write fails it is rolled back and the result says so.
func (b *Board) UpdateStatus(ctx context.Context, id string, status appointment.Status) UpdateResult {
	res := UpdateResult{AppointmentID: id, Requested: status}
	if !status.IsValid() {
		res.Err = appointment.ErrInvalidStatus
		return res
	}

	b.mu.Lock()
	idx := slices.IndexFunc(b.appts, func(a appointment.Appointment) bool { return a.ID == id })
	if idx < 0 {
		b.mu.Unlock()
		res.Err = appointment.ErrAppointmentNotFound
		return res
	}
	res.Previous = b.appts[idx].Status
	if o, ok := b.overrides[id]; ok {
		res.Previous = o.status
	}
	if b.cfg.StrictTransitions && !appointment.CanTransition(res.Previous, status) {
		b.mu.Unlock()
		res.Err = fmt.Errorf("%w: %s to %s", appointment.ErrInvalidStatusTransition, res.Previous, status)
		return res
	}
	b.seq++
	mine := b.seq
	b.overrides[id] = override{status: status, seq: mine}
	b.mu.Unlock()

	err := b.source.UpdateAppointment(ctx, appointment.UpdateStatusCommand{AppointmentID: id, Status: status})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.overrides[id].seq == mine {
		delete(b.overrides, id)
	}
	if err != nil {
		b.log.Warn("appointment status update failed, reverted",
			zap.String("appointment_id", id),
			zap.String("requested", string(status)),
			zap.Error(err),
		)
		res.Reverted = true
		res.Err = err
		return res
	}

	// An acknowledged write becomes the base status even when a newer
	// change is still in flight, unless a newer write already landed.
	if mine > b.committed[id] {
		b.committed[id] = mine
		for i := range b.appts {
			if b.appts[i].ID == id {
				b.appts[i].Status = status
			}
		}
	}
	res.Applied = true
	return res
}
