package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Medical Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalProfileRepoPG(pool *pgxpool.Pool) MedicalProfileRepository {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) Upsert(ctx context.Context, p *MedicalProfile) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO medical_profiles (patient_id, medical_history, symptoms)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id) DO UPDATE
		SET medical_history = EXCLUDED.medical_history,
			symptoms = EXCLUDED.symptoms,
			updated_at = NOW()`,
		p.PatientID, p.MedicalHistory, p.Symptoms)
	return err
}

func (r *profileRepoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*MedicalProfile, error) {
	var p MedicalProfile
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT patient_id, medical_history, symptoms, created_at, updated_at
		FROM medical_profiles WHERE patient_id = $1`, patientID).
		Scan(&p.PatientID, &p.MedicalHistory, &p.Symptoms, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// =========== Vital Repository ===========

type vitalRepoPG struct{ pool *pgxpool.Pool }

func NewVitalRepoPG(pool *pgxpool.Pool) VitalRepository {
	return &vitalRepoPG{pool: pool}
}

func (r *vitalRepoPG) Create(ctx context.Context, v *Vital) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO vitals (id, patient_id, blood_pressure, heart_rate, temperature, weight)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.PatientID, v.BloodPressure, v.HeartRate, v.Temperature, v.Weight)
	return err
}

func (r *vitalRepoPG) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*Vital, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, blood_pressure, heart_rate, temperature, weight, recorded_at
		FROM vitals WHERE patient_id = $1
		ORDER BY recorded_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Vital
	for rows.Next() {
		var v Vital
		if err := rows.Scan(&v.ID, &v.PatientID, &v.BloodPressure, &v.HeartRate,
			&v.Temperature, &v.Weight, &v.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const appointmentCols = `id, patient_id, appointment_date, time_slot, reason, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.Date, &a.TimeSlot, &a.Reason,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, appointment_date, time_slot, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PatientID, a.Date, a.TimeSlot, a.Reason, a.Status)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepoPG) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, time_slot DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Emergency Contact Repository ===========

type contactRepoPG struct{ pool *pgxpool.Pool }

func NewContactRepoPG(pool *pgxpool.Pool) ContactRepository {
	return &contactRepoPG{pool: pool}
}

func (r *contactRepoPG) ReplaceAll(ctx context.Context, patientID uuid.UUID, contacts []*EmergencyContact) error {
	q := conn(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM emergency_contacts WHERE patient_id = $1`, patientID); err != nil {
		return err
	}
	for _, c := range contacts {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.PatientID = patientID
		if _, err := q.Exec(ctx, `
			INSERT INTO emergency_contacts (id, patient_id, name, phone, relationship)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.PatientID, c.Name, c.Phone, c.Relationship); err != nil {
			return err
		}
	}
	return nil
}

func (r *contactRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, name, phone, relationship, created_at
		FROM emergency_contacts WHERE patient_id = $1 ORDER BY name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*EmergencyContact
	for rows.Next() {
		var c EmergencyContact
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Name, &c.Phone, &c.Relationship, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, provider_id, medication, dosage, instructions)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.PatientID, p.ProviderID, p.Medication, p.Dosage, p.Instructions)
	return err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, provider_id, medication, dosage, instructions, prescribed_at
		FROM prescriptions WHERE patient_id = $1 ORDER BY prescribed_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.PatientID, &p.ProviderID, &p.Medication,
			&p.Dosage, &p.Instructions, &p.PrescribedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
