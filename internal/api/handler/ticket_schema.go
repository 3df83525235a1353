package handler

import "github.com/campuscare/campuscare/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createTicketRequest struct {
	Title       string `json:"title"       validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	Location    string `json:"location"    validate:"required"`
	ImageURL    string `json:"imageUrl"    validate:"omitempty,url"`
}

type updateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type aiAnalysisResponse struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Summary  string `json:"summary"`
	IsHazard bool   `json:"isHazard"`
}

type createTicketResponse struct {
	Message    string             `json:"message"`
	Data       *domain.Ticket     `json:"data"`
	AIAnalysis aiAnalysisResponse `json:"aiAnalysis"`
}

type ticketListResponse struct {
	Data []*domain.Ticket `json:"data"`
}

type ticketResponse struct {
	Message string         `json:"message"`
	Data    *domain.Ticket `json:"data"`
}
