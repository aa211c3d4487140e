package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-ai/internal/storage"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

var (
	// ErrDoctorNotFound is returned for an unknown doctor key.
	ErrDoctorNotFound = errors.New("appointments: doctor not found")
	// ErrSlotUnavailable is returned when the requested slot is taken or unknown.
	ErrSlotUnavailable = errors.New("appointments: slot unavailable")
	// ErrNotFound is returned when an appointment does not exist.
	ErrNotFound = errors.New("appointments: appointment not found")
)

// directoryID is the single KV record holding the doctor directory.
const directoryID = "directory"

// Slot is one bookable time for a doctor.
type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Doctor is a bookable practitioner and their open slots.
type Doctor struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Slots     []Slot `json:"available_slots"`
}

// Appointment is a confirmed reservation linked to the session that booked it.
type Appointment struct {
	ID        string    `json:"appointment_id"`
	SessionID string    `json:"session_id"`
	DoctorKey string    `json:"doctor_key"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages the doctor directory and slot reservations. The booking
// state machine never touches slots; reservation is this separate flow.
type Service struct {
	kv     storage.KV
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates an appointment service over the given KV backend.
func NewService(kv storage.KV, logger *logging.Logger) *Service {
	if kv == nil {
		panic("appointments: kv cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		kv:     kv,
		logger: logger.Component("appointments"),
		now:    time.Now,
	}
}

// defaultDirectory seeds the directory on first use.
func defaultDirectory() []Doctor {
	return []Doctor{
		{
			Key: "dr_smith", Name: "Dr. Smith", Specialty: "General Medicine",
			Slots: []Slot{
				{Date: "2026-09-01", Time: "09:00", Available: true},
				{Date: "2026-09-01", Time: "10:00", Available: true},
				{Date: "2026-09-02", Time: "14:00", Available: true},
			},
		},
		{
			Key: "dr_johnson", Name: "Dr. Johnson", Specialty: "Cardiology",
			Slots: []Slot{
				{Date: "2026-09-01", Time: "11:00", Available: true},
				{Date: "2026-09-02", Time: "15:00", Available: true},
			},
		},
		{
			Key: "dr_brown", Name: "Dr. Brown", Specialty: "Dermatology",
			Slots: []Slot{
				{Date: "2026-09-01", Time: "13:00", Available: true},
				{Date: "2026-09-03", Time: "10:00", Available: true},
			},
		},
	}
}

// Directory returns all doctors with their slots, seeding defaults on first use.
func (s *Service) Directory(ctx context.Context) ([]Doctor, error) {
	data, err := s.kv.Get(ctx, storage.KindSlots, directoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			doctors := defaultDirectory()
			if err := s.saveDirectory(ctx, doctors); err != nil {
				return nil, err
			}
			return doctors, nil
		}
		return nil, fmt.Errorf("appointments: failed to load directory: %w", err)
	}

	var doctors []Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode directory: %w", err)
	}
	return doctors, nil
}

// AvailableSlots returns the open slots for a doctor.
func (s *Service) AvailableSlots(ctx context.Context, doctorKey string) ([]Slot, error) {
	doctors, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range doctors {
		if d.Key != doctorKey {
			continue
		}
		var open []Slot
		for _, slot := range d.Slots {
			if slot.Available {
				open = append(open, slot)
			}
		}
		return open, nil
	}
	return nil, ErrDoctorNotFound
}

// Reserve marks the slot unavailable and records a confirmed appointment
// linked to the session.
func (s *Service) Reserve(ctx context.Context, sessionID, doctorKey, date, slotTime string) (*Appointment, error) {
	doctors, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	reserved := false
	for i := range doctors {
		if doctors[i].Key != doctorKey {
			continue
		}
		found = true
		for j := range doctors[i].Slots {
			slot := &doctors[i].Slots[j]
			if slot.Date == date && slot.Time == slotTime && slot.Available {
				slot.Available = false
				reserved = true
				break
			}
		}
		break
	}
	if !found {
		return nil, ErrDoctorNotFound
	}
	if !reserved {
		return nil, ErrSlotUnavailable
	}

	if err := s.saveDirectory(ctx, doctors); err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:        "APT-" + uuid.New().String(),
		SessionID: sessionID,
		DoctorKey: doctorKey,
		Date:      date,
		Time:      slotTime,
		Status:    "confirmed",
		CreatedAt: s.now().UTC(),
	}
	data, err := json.Marshal(appt)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to encode appointment: %w", err)
	}
	if err := s.kv.Put(ctx, storage.KindAppointment, appt.ID, data); err != nil {
		return nil, fmt.Errorf("appointments: failed to persist appointment: %w", err)
	}

	s.logger.Info("slot reserved",
		"appointment_id", appt.ID,
		"session_id", sessionID,
		"doctor", doctorKey,
		"date", date,
		"time", slotTime,
	)
	return appt, nil
}

// Get loads an appointment by id.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	data, err := s.kv.Get(ctx, storage.KindAppointment, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: failed to load appointment %s: %w", id, err)
	}

	var appt Appointment
	if err := json.Unmarshal(data, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (s *Service) saveDirectory(ctx context.Context, doctors []Doctor) error {
	data, err := json.Marshal(doctors)
	if err != nil {
		return fmt.Errorf("appointments: failed to encode directory: %w", err)
	}
	if err := s.kv.Put(ctx, storage.KindSlots, directoryID, data); err != nil {
		return fmt.Errorf("appointments: failed to persist directory: %w", err)
	}
	return nil
}
