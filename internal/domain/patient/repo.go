package patient

import (
	"context"

	"github.com/google/uuid"
)

type MedicalProfileRepository interface {
	Upsert(ctx context.Context, p *MedicalProfile) error
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*MedicalProfile, error)
}

type VitalRepository interface {
	Create(ctx context.Context, v *Vital) error
	ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*Vital, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error)
}

type ContactRepository interface {
	// ReplaceAll swaps the patient's contact set for the given one.
	ReplaceAll(ctx context.Context, patientID uuid.UUID, contacts []*EmergencyContact) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*EmergencyContact, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}
