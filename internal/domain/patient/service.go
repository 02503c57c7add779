package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/auth"
	"github.com/medibot/medibot/internal/platform/db"
)

var ErrNotYours = errors.New("record does not belong to this patient")

const recentLimit = 20

type Service struct {
	profiles      MedicalProfileRepository
	vitals        VitalRepository
	appointments  AppointmentRepository
	contacts      ContactRepository
	prescriptions PrescriptionRepository
	runTx         func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(pool *pgxpool.Pool, profiles MedicalProfileRepository, vitals VitalRepository,
	appointments AppointmentRepository, contacts ContactRepository, prescriptions PrescriptionRepository) *Service {
	s := &Service{
		profiles:      profiles,
		vitals:        vitals,
		appointments:  appointments,
		contacts:      contacts,
		prescriptions: prescriptions,
	}
	if pool != nil {
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		// Tests run with map-backed repos and no pool.
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// patientID reads the signed-in user; every operation here is scoped
// to that user, never to an id in the request.
func patientID(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, fmt.Errorf("no signed-in user")
	}
	return id, nil
}

// -- Medical profile --

func (s *Service) SaveProfile(ctx context.Context, p *MedicalProfile) (*MedicalProfile, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	p.PatientID = id
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.profiles.GetByPatient(ctx, id)
}

func (s *Service) GetProfile(ctx context.Context) (*MedicalProfile, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByPatient(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		// A patient who never saved anything still has an empty profile.
		return &MedicalProfile{PatientID: id}, nil
	}
	return p, err
}

// -- Vitals --

func (s *Service) RecordVitals(ctx context.Context, v *Vital) error {
	id, err := patientID(ctx)
	if err != nil {
		return err
	}
	if v.BloodPressure == nil && v.HeartRate == nil && v.Temperature == nil && v.Weight == nil {
		return fmt.Errorf("at least one measurement is required")
	}
	if v.HeartRate != nil && (*v.HeartRate <= 0 || *v.HeartRate > 300) {
		return fmt.Errorf("heart_rate out of range: %d", *v.HeartRate)
	}
	if v.Temperature != nil && (*v.Temperature < 25 || *v.Temperature > 45) {
		return fmt.Errorf("temperature out of range: %v", *v.Temperature)
	}
	if v.Weight != nil && *v.Weight <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	v.PatientID = id
	if v.RecordedAt.IsZero() {
		v.RecordedAt = time.Now()
	}
	return s.vitals.Create(ctx, v)
}

func (s *Service) ListVitals(ctx context.Context, limit int) ([]*Vital, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = recentLimit
	}
	return s.vitals.ListRecent(ctx, id, limit)
}

// -- Appointments --

func (s *Service) BookAppointment(ctx context.Context, a *Appointment) error {
	id, err := patientID(ctx)
	if err != nil {
		return err
	}
	if a.Date.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if strings.TrimSpace(a.TimeSlot) == "" {
		return fmt.Errorf("time_slot is required")
	}
	a.PatientID = id
	a.Status = AppointmentScheduled
	return s.appointments.Create(ctx, a)
}

func (s *Service) ListAppointments(ctx context.Context, limit int) ([]*Appointment, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = recentLimit
	}
	return s.appointments.ListRecent(ctx, id, limit)
}

// CancelAppointment cancels the patient's own scheduled appointment.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	pid, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.PatientID != pid {
		return nil, ErrNotYours
	}
	if existing.Status != AppointmentScheduled {
		return nil, fmt.Errorf("only scheduled appointments can be cancelled, status is %s", existing.Status)
	}
	if err := s.appointments.UpdateStatus(ctx, id, AppointmentCancelled); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, id)
}

// -- Emergency contacts --

// SaveContacts replaces the patient's contact set in one transaction.
func (s *Service) SaveContacts(ctx context.Context, contacts []*EmergencyContact) ([]*EmergencyContact, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
			return nil, fmt.Errorf("contact name and phone are required")
		}
	}
	err = s.runTx(ctx, func(ctx context.Context) error {
		return s.contacts.ReplaceAll(ctx, id, contacts)
	})
	if err != nil {
		return nil, err
	}
	return s.contacts.ListByPatient(ctx, id)
}

func (s *Service) ListContacts(ctx context.Context) ([]*EmergencyContact, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	return s.contacts.ListByPatient(ctx, id)
}

// -- Prescriptions --

// Prescribe is provider-only; the route guard enforces the role, the
// service stamps the provider id from the token.
func (s *Service) Prescribe(ctx context.Context, req *PrescriptionRequest) (*Prescription, error) {
	providerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("no signed-in user")
	}
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(req.Medication) == "" {
		return nil, fmt.Errorf("medication is required")
	}
	if strings.TrimSpace(req.Dosage) == "" {
		return nil, fmt.Errorf("dosage is required")
	}
	p := &Prescription{
		PatientID:    req.PatientID,
		ProviderID:   providerID,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
		PrescribedAt: time.Now(),
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPrescriptions(ctx context.Context) ([]*Prescription, error) {
	id, err := patientID(ctx)
	if err != nil {
		return nil, err
	}
	return s.prescriptions.ListByPatient(ctx, id)
}
