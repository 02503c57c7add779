package patient

import (
	"time"

	"github.com/google/uuid"
)

// MedicalProfile holds the free-text medical background a patient
// maintains about themselves. One row per patient, upserted.
type MedicalProfile struct {
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicalHistory *string   `db:"medical_history" json:"medical_history,omitempty"`
	Symptoms       *string   `db:"symptoms" json:"symptoms,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Vital is one self-reported measurement set.
type Vital struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	BloodPressure *string   `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate     *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature   *float64  `db:"temperature" json:"temperature,omitempty"`
	Weight        *float64  `db:"weight" json:"weight,omitempty"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
}

// Appointment statuses. New appointments start scheduled; cancel is
// the only patient-driven transition.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Date      time.Time `db:"appointment_date" json:"appointment_date"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type EmergencyContact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Relationship string    `db:"relationship" json:"relationship"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Prescription is written by a healthcare provider and read-only for
// the patient.
type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID   uuid.UUID `db:"provider_id" json:"provider_id"`
	Medication   string    `db:"medication" json:"medication"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	PrescribedAt time.Time `db:"prescribed_at" json:"prescribed_at"`
}

// PrescriptionRequest is the provider-facing creation payload.
type PrescriptionRequest struct {
	PatientID    uuid.UUID `json:"patient_id"`
	Medication   string    `json:"medication"`
	Dosage       string    `json:"dosage"`
	Instructions *string   `json:"instructions,omitempty"`
}
