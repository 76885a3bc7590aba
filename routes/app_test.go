package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/controllers"
	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/testutil/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Path    string          `json:"path"`
}

type testServer struct {
	app    *fiber.App
	store  *memstore.Store
	health map[string]controllers.Check
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	log := zerolog.Nop()
	tokens := services.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour, nil)
	health := map[string]controllers.Check{}

	app := NewApp(Options{
		Tokens: tokens,
		Handlers: Handlers{
			Auth: controllers.NewAuthController(
				services.NewAuthService(store, tokens, services.BcryptHasher{Cost: 4}, log)),
			Appointment: controllers.NewAppointmentController(
				services.NewAppointmentService(store, nil, nil, log), time.UTC),
			Prescription: controllers.NewPrescriptionController(
				services.NewPrescriptionService(memstore.NewPrescriptions(), store, nil)),
			MedicalHistory: controllers.NewMedicalHistoryController(
				services.NewMedicalHistoryService(memstore.NewMedicalHistories(), store, nil)),
			File: controllers.NewFileController(
				services.NewFileService(nil, store, "smart-clinic", nil)),
			Health: controllers.NewHealthController(health),
		},
		Log: log,
	})
	return &testServer{app: app, store: store, health: health}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (int, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type registered struct {
	UserID    uint   `json:"userId"`
	Role      string `json:"role"`
	DoctorID  uint   `json:"doctorId"`
	PatientID uint   `json:"patientId"`
}

func (s *testServer) register(t *testing.T, payload map[string]any) registered {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusOK, code, env.Message)
	return decode[registered](t, env.Data)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)
	return decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token
}

type clinic struct {
	doctor, patient           registered
	doctorToken, patientToken string
}

func (s *testServer) seedClinic(t *testing.T) clinic {
	t.Helper()
	var c clinic
	c.doctor = s.register(t, map[string]any{
		"name": "Dr. Heart", "email": "doc@example.com", "password": "secret123",
		"role": "DOCTOR", "specialization": "Cardiology",
	})
	c.patient = s.register(t, map[string]any{
		"name": "Pat Smith", "email": "pat@example.com", "password": "secret123",
		"role": "patient", "age": 34,
	})
	c.doctorToken = s.login(t, "doc@example.com", "secret123")
	c.patientToken = s.login(t, "pat@example.com", "secret123")
	return c
}

func TestRegisterLoginBook(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Dr. Heart", "email": "doc@example.com", "password": "secret123",
		"role": "doctor", "specialization": "Cardiology",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "User registered successfully", env.Message)
	doc := decode[registered](t, env.Data)
	assert.Equal(t, "DOCTOR", doc.Role)
	assert.NotZero(t, doc.DoctorID)

	pat := s.register(t, map[string]any{
		"name": "Pat Smith", "email": "pat@example.com", "password": "secret123", "role": "PATIENT", "age": 34,
	})
	assert.NotZero(t, pat.PatientID)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "doc@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", env.Message)
	login := decode[struct {
		Token string `json:"token"`
		Type  string `json:"type"`
		Role  string `json:"role"`
	}](t, env.Data)
	assert.Equal(t, "Bearer", login.Type)
	assert.Equal(t, "DOCTOR", login.Role)
	require.NotEmpty(t, login.Token)

	code, env = s.do(t, http.MethodPost, "/api/appointments", login.Token, map[string]any{
		"patientId": pat.PatientID,
		"doctorId":  doc.DoctorID,
		"date":      time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Appointment booked successfully", env.Message)
	appt := decode[models.Appointment](t, env.Data)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.NotZero(t, appt.ID)

	code, env = s.do(t, http.MethodPost, "/api/appointments", login.Token, map[string]any{
		"patientId": pat.PatientID,
		"doctorId":  doc.DoctorID,
		"date":      time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Appointment date must be in the future", env.Message)

	_, _, _, n := s.store.Counts()
	assert.Equal(t, 1, n)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.seedClinic(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Again", "email": "doc@example.com", "password": "secret123", "role": "DOCTOR", "specialization": "ENT",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User with email doc@example.com already exists", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "X", "email": "not-an-email", "password": "123", "role": "NURSE",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	fields := decode[map[string]string](t, env.Data)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.Contains(t, fields, "name")

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "doc@example.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Message)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	code, env = s.send(t, req, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)

	code, env := s.do(t, http.MethodGet, "/api/auth/me", c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[services.ProfileResult](t, env.Data)
	assert.Equal(t, c.doctor.DoctorID, me.DoctorID)
	assert.Equal(t, "Cardiology", me.Specialization)

	code, env = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "/api/auth/me", env.Path)
}

func TestRoutingAndRoles(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)

	code, env := s.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "/api/unknown", env.Path)

	code, env = s.do(t, http.MethodGet, "/api/unknown", c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Resource not found", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/prescriptions", c.patientToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden: insufficient role", env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/medical-history/all", c.patientToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAppointmentEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)
	patientPath := "/api/appointments/patient/" + strconv.FormatUint(uint64(c.patient.PatientID), 10)

	code, env := s.do(t, http.MethodPost, "/api/appointments", c.patientToken, map[string]any{
		"patientId": 999, "doctorId": c.doctor.DoctorID, "date": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Patient not found", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/appointments", c.patientToken, map[string]any{"doctorId": c.doctor.DoctorID})
	assert.Equal(t, http.StatusBadRequest, code)
	fields := decode[map[string]string](t, env.Data)
	assert.Equal(t, "Patient ID is required", fields["patientId"])
	assert.Equal(t, "Appointment date is required", fields["date"])

	code, env = s.do(t, http.MethodPost, "/api/appointments", c.patientToken, map[string]any{
		"patientId": c.patient.PatientID, "doctorId": c.doctor.DoctorID, "date": "next tuesday",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, decode[map[string]string](t, env.Data), "date")

	code, env = s.do(t, http.MethodPost, "/api/appointments", c.patientToken, map[string]any{
		"patientId": c.patient.PatientID, "doctorId": c.doctor.DoctorID,
		"date": time.Now().Add(48 * time.Hour).UTC().Format("2006-01-02T15:04:05"),
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	appt := decode[models.Appointment](t, env.Data)

	code, env = s.do(t, http.MethodGet, patientPath, c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Patient appointments retrieved successfully", env.Message)
	assert.Len(t, decode[[]models.Appointment](t, env.Data), 1)

	code, env = s.do(t, http.MethodGet, "/api/appointments/doctor/999", c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Doctor not found", env.Message)

	statusPath := "/api/appointments/" + strconv.FormatUint(uint64(appt.ID), 10) + "/status"
	code, env = s.do(t, http.MethodPut, statusPath+"?status=completed", c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusCompleted, decode[models.Appointment](t, env.Data).Status)

	code, env = s.do(t, http.MethodPut, statusPath+"?status=PENDING", c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusPending, decode[models.Appointment](t, env.Data).Status)

	code, env = s.do(t, http.MethodPut, statusPath+"?status=LOST", c.doctorToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid appointment status: LOST", env.Message)

	code, env = s.do(t, http.MethodPut, "/api/appointments/4242/status?status=CONFIRMED", c.doctorToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Appointment not found", env.Message)
}

func TestPrescriptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)

	code, env := s.do(t, http.MethodPost, "/api/prescriptions", c.doctorToken, map[string]any{
		"patientId":    c.patient.PatientID,
		"doctorId":     c.doctor.DoctorID,
		"medicineList": []map[string]any{{"name": "Aspirin", "dosage": "100mg", "frequency": "daily", "duration": 7}},
		"notes":        "after meals",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Prescription created successfully", env.Message)
	rx := decode[models.Prescription](t, env.Data)
	id := rx.ID.Hex()

	code, env = s.do(t, http.MethodGet, "/api/prescriptions/"+id, c.patientToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "after meals", decode[models.Prescription](t, env.Data).Notes)

	code, env = s.do(t, http.MethodPut, "/api/prescriptions/"+id, c.doctorToken, map[string]any{
		"patientId": c.patient.PatientID, "doctorId": c.doctor.DoctorID, "medicineList": []any{}, "notes": "stop",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Prescription updated successfully", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/prescriptions/patient/"+strconv.FormatUint(uint64(c.patient.PatientID), 10), c.patientToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Prescription](t, env.Data), 1)

	code, env = s.do(t, http.MethodDelete, "/api/prescriptions/"+id, c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Prescription with ID "+id+" has been deleted", decode[string](t, env.Data))

	code, env = s.do(t, http.MethodGet, "/api/prescriptions/"+id, c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Prescription not found", env.Message)

	code, _ = s.do(t, http.MethodDelete, "/api/prescriptions/"+id, c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMedicalHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)
	patientPath := "/api/medical-history/patient/" + strconv.FormatUint(uint64(c.patient.PatientID), 10)

	code, env := s.do(t, http.MethodGet, patientPath, c.patientToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No medical history found for patient", env.Message)
	assert.Equal(t, "null", string(env.Data))

	add := func(recordType string) models.MedicalHistory {
		code, env := s.do(t, http.MethodPost, "/api/medical-history", c.doctorToken, map[string]any{
			"patientId": c.patient.PatientID,
			"record":    map[string]any{"recordType": recordType, "description": "checkup", "doctorId": c.doctor.DoctorID},
		})
		require.Equal(t, http.StatusOK, code, env.Message)
		assert.Equal(t, "Medical record added successfully", env.Message)
		return decode[models.MedicalHistory](t, env.Data)
	}
	first := add("DIAGNOSIS")
	second := add("TEST_RESULT")
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Records, 2)
	id := first.ID.Hex()

	code, env = s.do(t, http.MethodPut, "/api/medical-history/"+id+"/record", c.doctorToken, map[string]any{
		"patientId": c.patient.PatientID, "record": map[string]any{"recordType": "TREATMENT"},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Medical record updated successfully", env.Message)
	assert.Len(t, decode[models.MedicalHistory](t, env.Data).Records, 3)

	code, env = s.do(t, http.MethodDelete, "/api/medical-history/"+id+"/record/0", c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "TEST_RESULT", decode[models.MedicalHistory](t, env.Data).Records[0].RecordType)

	code, env = s.do(t, http.MethodDelete, "/api/medical-history/"+id+"/record/9", c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Invalid record index", env.Message)

	code, env = s.do(t, http.MethodDelete, "/api/medical-history/"+id+"/record/first", c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Invalid record index", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/medical-history/all", c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.MedicalHistory](t, env.Data), 1)

	code, env = s.do(t, http.MethodDelete, "/api/medical-history/"+id, c.doctorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Medical history with ID "+id+" has been deleted", decode[string](t, env.Data))

	code, env = s.do(t, http.MethodGet, "/api/medical-history/"+id, c.doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Medical history not found", env.Message)
}

func TestFileUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, w.WriteField("fileType", "lab_report"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	code, env := s.send(t, req, c.patientToken)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "File storage is not configured", env.Message)

	req = httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewBufferString("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	code, env = s.send(t, req, c.patientToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File is required", decode[map[string]string](t, env.Data)["file"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.health["postgres"] = func(context.Context) error { return nil }

	code, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	code, env = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "UP", decode[map[string]string](t, env.Data)["postgres"])

	s.health["mongo"] = func(context.Context) error { return errors.New("no reachable servers") }
	code, env = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "DOWN", decode[map[string]string](t, env.Data)["mongo"])
}

func TestInternalErrorsAreMasked(t *testing.T) {
	s := newTestServer(t)
	c := s.seedClinic(t)
	s.store.FailWith(errors.New("pq: connection reset by peer"))

	code, env := s.do(t, http.MethodGet, "/api/appointments/doctor/1", c.doctorToken, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "An unexpected error occurred. Please try again later.", env.Message)
}
