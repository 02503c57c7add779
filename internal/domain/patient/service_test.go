package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/platform/auth"
)

// -- Mock Repositories --

type mockProfileRepo struct {
	profiles map[uuid.UUID]*MedicalProfile
}

func (m *mockProfileRepo) Upsert(_ context.Context, p *MedicalProfile) error {
	p.UpdatedAt = time.Now()
	m.profiles[p.PatientID] = p
	return nil
}

func (m *mockProfileRepo) GetByPatient(_ context.Context, patientID uuid.UUID) (*MedicalProfile, error) {
	p, ok := m.profiles[patientID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockVitalRepo struct {
	vitals []*Vital
}

func (m *mockVitalRepo) Create(_ context.Context, v *Vital) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.vitals = append(m.vitals, v)
	return nil
}

func (m *mockVitalRepo) ListRecent(_ context.Context, patientID uuid.UUID, limit int) ([]*Vital, error) {
	var result []*Vital
	for _, v := range m.vitals {
		if v.PatientID == patientID {
			result = append(result, v)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appointments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = status
	return nil
}

func (m *mockAppointmentRepo) ListRecent(_ context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type mockContactRepo struct {
	contacts map[uuid.UUID][]*EmergencyContact
}

func (m *mockContactRepo) ReplaceAll(_ context.Context, patientID uuid.UUID, contacts []*EmergencyContact) error {
	for _, c := range contacts {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.PatientID = patientID
	}
	m.contacts[patientID] = contacts
	return nil
}

func (m *mockContactRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*EmergencyContact, error) {
	return m.contacts[patientID], nil
}

type mockPrescriptionRepo struct {
	prescriptions []*Prescription
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.prescriptions = append(m.prescriptions, p)
	return nil
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	var result []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, nil
}

func newTestService() *Service {
	return NewService(nil,
		&mockProfileRepo{profiles: make(map[uuid.UUID]*MedicalProfile)},
		&mockVitalRepo{},
		&mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)},
		&mockContactRepo{contacts: make(map[uuid.UUID][]*EmergencyContact)},
		&mockPrescriptionRepo{},
	)
}

func patientCtx(id uuid.UUID) context.Context {
	return auth.ContextWithUser(context.Background(), id.String(), auth.RolePatient)
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

// -- Tests --

func TestSaveProfile_Upsert(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	first, err := svc.SaveProfile(ctx, &MedicalProfile{MedicalHistory: strPtr("asthma")})
	if err != nil {
		t.Fatalf("SaveProfile() error: %v", err)
	}
	if first.MedicalHistory == nil || *first.MedicalHistory != "asthma" {
		t.Errorf("expected history saved, got %v", first.MedicalHistory)
	}

	second, err := svc.SaveProfile(ctx, &MedicalProfile{MedicalHistory: strPtr("asthma, allergy")})
	if err != nil {
		t.Fatalf("second SaveProfile() error: %v", err)
	}
	if *second.MedicalHistory != "asthma, allergy" {
		t.Errorf("expected history replaced, got %q", *second.MedicalHistory)
	}
}

func TestGetProfile_EmptyWhenNeverSaved(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	p, err := svc.GetProfile(patientCtx(id))
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if p.PatientID != id || p.MedicalHistory != nil {
		t.Errorf("expected empty profile for new patient, got %+v", p)
	}
}

func TestRecordVitals(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	v := &Vital{BloodPressure: strPtr("120/80"), HeartRate: intPtr(72), Weight: floatPtr(68.5)}
	if err := svc.RecordVitals(ctx, v); err != nil {
		t.Fatalf("RecordVitals() error: %v", err)
	}
	if v.RecordedAt.IsZero() {
		t.Error("expected recorded_at to be stamped")
	}
}

func TestRecordVitals_Validation(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	cases := []struct {
		name string
		v    Vital
	}{
		{"no measurements", Vital{}},
		{"heart rate too high", Vital{HeartRate: intPtr(500)}},
		{"temperature too low", Vital{Temperature: floatPtr(10)}},
		{"negative weight", Vital{Weight: floatPtr(-1)}},
	}
	for _, tc := range cases {
		if err := svc.RecordVitals(ctx, &tc.v); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestBookAppointment(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	a := &Appointment{Date: time.Now().AddDate(0, 0, 7), TimeSlot: "10:30"}
	if err := svc.BookAppointment(patientCtx(id), a); err != nil {
		t.Fatalf("BookAppointment() error: %v", err)
	}
	if a.Status != AppointmentScheduled {
		t.Errorf("expected scheduled, got %s", a.Status)
	}
	if a.PatientID != id {
		t.Errorf("expected patient %s, got %s", id, a.PatientID)
	}
}

func TestCancelAppointment(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	a := &Appointment{Date: time.Now().AddDate(0, 0, 1), TimeSlot: "09:00"}
	if err := svc.BookAppointment(ctx, a); err != nil {
		t.Fatalf("BookAppointment() error: %v", err)
	}

	cancelled, err := svc.CancelAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}
	if cancelled.Status != AppointmentCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	// Cancelling again is rejected: no longer scheduled.
	if _, err := svc.CancelAppointment(ctx, a.ID); err == nil {
		t.Error("expected second cancel to fail")
	}
}

func TestCancelAppointment_OtherPatient(t *testing.T) {
	svc := newTestService()
	owner := patientCtx(uuid.New())

	a := &Appointment{Date: time.Now().AddDate(0, 0, 1), TimeSlot: "09:00"}
	if err := svc.BookAppointment(owner, a); err != nil {
		t.Fatalf("BookAppointment() error: %v", err)
	}

	stranger := patientCtx(uuid.New())
	if _, err := svc.CancelAppointment(stranger, a.ID); !errors.Is(err, ErrNotYours) {
		t.Errorf("expected ErrNotYours, got %v", err)
	}
}

func TestSaveContacts_ReplacesSet(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	first, err := svc.SaveContacts(ctx, []*EmergencyContact{
		{Name: "Jean", Phone: "+250788000001", Relationship: "sibling"},
		{Name: "Alice", Phone: "+250788000002", Relationship: "parent"},
	})
	if err != nil {
		t.Fatalf("SaveContacts() error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(first))
	}

	second, err := svc.SaveContacts(ctx, []*EmergencyContact{
		{Name: "Bob", Phone: "+250788000003", Relationship: "spouse"},
	})
	if err != nil {
		t.Fatalf("second SaveContacts() error: %v", err)
	}
	if len(second) != 1 || second[0].Name != "Bob" {
		t.Errorf("expected contact set replaced, got %v", second)
	}
}

func TestSaveContacts_RequiresNameAndPhone(t *testing.T) {
	svc := newTestService()
	ctx := patientCtx(uuid.New())

	if _, err := svc.SaveContacts(ctx, []*EmergencyContact{{Name: "", Phone: "123"}}); err == nil {
		t.Error("expected missing name to be rejected")
	}
}

func TestPrescribe(t *testing.T) {
	svc := newTestService()
	providerID := uuid.New()
	patID := uuid.New()
	providerCtx := auth.ContextWithUser(context.Background(), providerID.String(), auth.RoleHealthcareProvider)

	p, err := svc.Prescribe(providerCtx, &PrescriptionRequest{
		PatientID:  patID,
		Medication: "Amoxicillin",
		Dosage:     "500mg 3x/day",
	})
	if err != nil {
		t.Fatalf("Prescribe() error: %v", err)
	}
	if p.ProviderID != providerID {
		t.Errorf("expected provider stamped from context, got %s", p.ProviderID)
	}

	items, err := svc.ListPrescriptions(patientCtx(patID))
	if err != nil {
		t.Fatalf("ListPrescriptions() error: %v", err)
	}
	if len(items) != 1 || items[0].Medication != "Amoxicillin" {
		t.Errorf("expected the prescription visible to the patient, got %v", items)
	}
}

func TestPrescribe_Validation(t *testing.T) {
	svc := newTestService()
	ctx := auth.ContextWithUser(context.Background(), uuid.NewString(), auth.RoleHealthcareProvider)

	cases := []PrescriptionRequest{
		{Medication: "X", Dosage: "1"},
		{PatientID: uuid.New(), Dosage: "1"},
		{PatientID: uuid.New(), Medication: "X"},
	}
	for i, req := range cases {
		if _, err := svc.Prescribe(ctx, &req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
