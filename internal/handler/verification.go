package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/payload"
	"github.com/parkqueue/parkqueue-api/internal/usecase"
	"github.com/parkqueue/parkqueue-api/internal/validation"
)

// VerificationHandler serves the document submission endpoints, the approval
// gate, and the admin review endpoints.
type VerificationHandler struct {
	verificationUsecase usecase.VerificationUsecase
	validator           *validation.Validator
	logger              *zerolog.Logger
}

// NewVerificationHandler creates a new VerificationHandler instance.
func NewVerificationHandler(
	verificationUsecase usecase.VerificationUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *VerificationHandler {
	return &VerificationHandler{
		verificationUsecase: verificationUsecase,
		validator:           validator,
		logger:              logger,
	}
}

// Status evaluates the approval gate for the signed-in user. The front end
// uses this on every dashboard and verification page load.
func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	status, err := h.verificationUsecase.Status(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to evaluate approval status")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, payload.StatusResponse{Status: string(status)})
}

// Submit stores a verification submission for the signed-in user.
func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req payload.SubmitVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := submitParams(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date field")
		return
	}

	if err := h.verificationUsecase.Submit(r.Context(), claims.UserID, params); err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlreadySubmitted):
			respondError(w, http.StatusConflict, "Your information has been submitted and is awaiting admin approval.")
		case errors.Is(err, usecase.ErrInvalidDocumentURL):
			respondError(w, http.StatusBadRequest, "Please provide a valid Google Drive link for each document.")
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error().Err(err).Msg("failed to submit verification")
			respondError(w, http.StatusInternalServerError, "Failed to submit verification. Please try again.")
		}
		return
	}

	respondMessage(w, http.StatusCreated, "verification submitted")
}

// ListPending returns the submissions awaiting admin review.
func (h *VerificationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.verificationUsecase.ListPending(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pending verifications")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	responses := make([]payload.PendingVerificationResponse, 0, len(pending))
	for _, p := range pending {
		responses = append(responses, pendingVerificationResponse(p))
	}

	respondJSON(w, http.StatusOK, responses)
}

// Review records an admin approval decision for a user.
func (h *VerificationHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing user id")
		return
	}

	var req payload.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.verificationUsecase.Review(r.Context(), userID, *req.Approve); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrNotSubmitted):
			respondError(w, http.StatusConflict, "user has no verification submission to review")
		default:
			h.logger.Error().Err(err).Msg("failed to review verification")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondMessage(w, http.StatusOK, "review recorded")
}

func submitParams(req payload.SubmitVerificationRequest) (usecase.SubmitParams, error) {
	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return usecase.SubmitParams{}, err
	}

	var registrationDate *time.Time
	if req.RegistrationDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RegistrationDate)
		if err != nil {
			return usecase.SubmitParams{}, err
		}
		registrationDate = &parsed
	}

	return usecase.SubmitParams{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		DateOfBirth:   dateOfBirth,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,

		Brand:            req.Brand,
		Model:            req.Model,
		PlateNumber:      req.PlateNumber,
		RegistrationDate: registrationDate,

		LicenseDocumentType:      req.LicenseDocumentType,
		LicenseDocumentURL:       req.LicenseDocument,
		RegistrationDocumentType: req.RegistrationDocumentType,
		RegistrationDocumentURL:  req.RegistrationDocument,
		AdditionalDocumentType:   req.AdditionalDocumentType,
		AdditionalDocumentURL:    req.AdditionalDocument,
		OtherDocumentType:        req.OtherDocumentType,
	}, nil
}

func pendingVerificationResponse(p usecase.PendingVerification) payload.PendingVerificationResponse {
	resp := payload.PendingVerificationResponse{
		User:      userResponse(p.User),
		Documents: make([]payload.DocumentResponse, 0, len(p.Documents)),
	}

	if p.PersonalInfo != nil {
		resp.PersonalInfo = &payload.PersonalInfoResponse{
			FirstName:     p.PersonalInfo.FirstName,
			MiddleName:    p.PersonalInfo.MiddleName,
			LastName:      p.PersonalInfo.LastName,
			DateOfBirth:   p.PersonalInfo.DateOfBirth,
			ContactNumber: p.PersonalInfo.ContactNumber,
			Address:       p.PersonalInfo.Address,
		}
	}

	if p.MotorInfo != nil {
		resp.MotorInfo = &payload.MotorInfoResponse{
			Brand:            p.MotorInfo.Brand,
			Model:            p.MotorInfo.Model,
			PlateNumber:      p.MotorInfo.PlateNumber,
			RegistrationDate: p.MotorInfo.RegistrationDate,
		}
	}

	for _, doc := range p.Documents {
		resp.Documents = append(resp.Documents, payload.DocumentResponse{
			DocumentType: doc.DocumentType,
			DocumentURL:  doc.DocumentURL,
			Verified:     doc.Verified,
			UploadedAt:   doc.UploadedAt,
		})
	}

	return resp
}
