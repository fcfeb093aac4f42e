package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/model"
	"github.com/parkqueue/parkqueue-api/internal/payload"
	"github.com/parkqueue/parkqueue-api/internal/usecase"
)

type verificationHandlerFixture struct {
	handler      *VerificationHandler
	verification *fakeVerificationUsecase
}

func newVerificationHandlerFixture(t *testing.T) *verificationHandlerFixture {
	t.Helper()

	f := &verificationHandlerFixture{
		verification: &fakeVerificationUsecase{},
	}

	f.handler = NewVerificationHandler(f.verification, testValidator(t), testLogger())
	return f
}

func userClaims() *auth.SessionClaims {
	return &auth.SessionClaims{UserID: "user-1", SessionID: "session-1", Role: model.RoleUser}
}

const validSubmitBody = `{
	"first_name": "Ana",
	"last_name": "Reyes",
	"date_of_birth": "1999-04-12",
	"contact_number": "09171234567",
	"address": "Quezon City",
	"brand": "Honda",
	"model": "Click 125i",
	"plate_number": "ABC-1234",
	"license_document_type": "Driver's License",
	"license_document": "https://drive.google.com/file/d/license",
	"registration_document_type": "Official Receipt / Certificate of Registration",
	"registration_document": "https://drive.google.com/file/d/registration"
}`

func TestStatusHandler(t *testing.T) {
	f := newVerificationHandlerFixture(t)
	f.verification.status = usecase.StatusPending

	r := httptest.NewRequest(http.MethodGet, "/api/users/me/status", nil)
	rec := httptest.NewRecorder()
	f.handler.Status(rec, withClaims(r, userClaims()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body payload.StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != string(usecase.StatusPending) {
		t.Errorf("status = %q, want %q", body.Status, usecase.StatusPending)
	}
}

func TestStatusHandlerRequiresSession(t *testing.T) {
	f := newVerificationHandlerFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/api/users/me/status", nil)
	rec := httptest.NewRecorder()
	f.handler.Status(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestSubmitHandler(t *testing.T) {
	f := newVerificationHandlerFixture(t)

	r := postJSON("/api/verification", validSubmitBody)
	rec := httptest.NewRecorder()
	f.handler.Submit(rec, withClaims(r, userClaims()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if f.verification.submitCalls != 1 {
		t.Errorf("submit calls = %d, want 1", f.verification.submitCalls)
	}
}

func TestSubmitHandlerMissingPlateNumber(t *testing.T) {
	f := newVerificationHandlerFixture(t)

	body := `{
		"first_name": "Ana",
		"last_name": "Reyes",
		"date_of_birth": "1999-04-12",
		"contact_number": "09171234567",
		"address": "Quezon City",
		"brand": "Honda",
		"model": "Click 125i",
		"license_document_type": "Driver's License",
		"license_document": "https://drive.google.com/file/d/license",
		"registration_document_type": "OR/CR",
		"registration_document": "https://drive.google.com/file/d/registration"
	}`

	r := postJSON("/api/verification", body)
	rec := httptest.NewRecorder()
	f.handler.Submit(rec, withClaims(r, userClaims()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if f.verification.submitCalls != 0 {
		t.Error("usecase called despite invalid request")
	}
}

func TestSubmitHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "already submitted", err: usecase.ErrAlreadySubmitted, wantStatus: http.StatusConflict},
		{name: "invalid document url", err: usecase.ErrInvalidDocumentURL, wantStatus: http.StatusBadRequest},
		{name: "unknown user", err: usecase.ErrUserNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerificationHandlerFixture(t)
			f.verification.submitErr = tt.err

			r := postJSON("/api/verification", validSubmitBody)
			rec := httptest.NewRecorder()
			f.handler.Submit(rec, withClaims(r, userClaims()))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSubmitHandlerGoogleDriveMessage(t *testing.T) {
	f := newVerificationHandlerFixture(t)
	f.verification.submitErr = usecase.ErrInvalidDocumentURL

	r := postJSON("/api/verification", validSubmitBody)
	rec := httptest.NewRecorder()
	f.handler.Submit(rec, withClaims(r, userClaims()))

	body := decodeErrorResponse(t, rec)
	if body.Message != "Please provide a valid Google Drive link for each document." {
		t.Errorf("message = %q, want the Google Drive guidance", body.Message)
	}
}

func TestListPendingHandler(t *testing.T) {
	f := newVerificationHandlerFixture(t)
	f.verification.pending = []usecase.PendingVerification{
		{
			User: &model.User{
				ID:                    bson.NewObjectID(),
				Email:                 "pending@example.com",
				VerificationSubmitted: true,
			},
			PersonalInfo: &model.PersonalInfo{FirstName: "Ana", LastName: "Reyes"},
			MotorInfo:    &model.MotorInfo{Brand: "Honda", PlateNumber: "ABC-1234"},
			Documents: []model.Document{
				{DocumentType: "Driver's License", DocumentURL: "https://drive.google.com/file/d/license", UploadedAt: time.Now()},
			},
		},
	}

	r := httptest.NewRequest(http.MethodGet, "/api/admin/verifications", nil)
	rec := httptest.NewRecorder()
	f.handler.ListPending(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body []payload.PendingVerificationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("entries = %d, want 1", len(body))
	}
	entry := body[0]
	if entry.User.Email != "pending@example.com" {
		t.Errorf("user email = %q, want pending@example.com", entry.User.Email)
	}
	if entry.PersonalInfo == nil || entry.MotorInfo == nil || len(entry.Documents) != 1 {
		t.Error("submission details missing from the response")
	}
}

func TestReviewHandler(t *testing.T) {
	f := newVerificationHandlerFixture(t)

	router := chi.NewRouter()
	router.Post("/api/admin/verifications/{userID}/review", f.handler.Review)

	r := postJSON("/api/admin/verifications/user-1/review", `{"approve":true}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if approved, ok := f.verification.reviewed["user-1"]; !ok || !approved {
		t.Errorf("reviewed = %v, want user-1 approved", f.verification.reviewed)
	}
}

func TestReviewHandlerRequiresDecision(t *testing.T) {
	f := newVerificationHandlerFixture(t)

	router := chi.NewRouter()
	router.Post("/api/admin/verifications/{userID}/review", f.handler.Review)

	r := postJSON("/api/admin/verifications/user-1/review", `{}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if f.verification.reviewCalls != 0 {
		t.Error("usecase called without an explicit decision")
	}
}

func TestReviewHandlerNotSubmitted(t *testing.T) {
	f := newVerificationHandlerFixture(t)
	f.verification.reviewErr = usecase.ErrNotSubmitted

	router := chi.NewRouter()
	router.Post("/api/admin/verifications/{userID}/review", f.handler.Review)

	r := postJSON("/api/admin/verifications/user-1/review", `{"approve":false}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}
