// Package transport holds the request and response shapes of the leads
// API. Every operation answers with the message/success envelope.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CreateLeadRequest struct {
	Name         string       `json:"name" validate:"required,max=200"`
	Company      string       `json:"company" validate:"max=200"`
	Position     string       `json:"position" validate:"max=200"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Phone        string       `json:"phone" validate:"max=32"`
	Website      string       `json:"website" validate:"omitempty,max=300"`
	Address      AddressInput `json:"address"`
	Status       string       `json:"status" validate:"max=100"`
	Source       string       `json:"source" validate:"max=100"`
	Product      string       `json:"product" validate:"max=200"`
	Tags         []string     `json:"tags" validate:"max=50,dive,max=100"`
	Currency     string       `json:"currency" validate:"omitempty,len=3"`
	Value        *float64     `json:"value" validate:"omitempty,gte=0"`
	AssignedTo   *uuid.UUID   `json:"assignedTo"`
	Public       bool         `json:"public"`
	FollowUpDate *time.Time   `json:"followUpDate"`
}

type UpdateLeadRequest struct {
	Name         *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Company      *string       `json:"company" validate:"omitempty,max=200"`
	Position     *string       `json:"position" validate:"omitempty,max=200"`
	Email        *string       `json:"email" validate:"omitempty,email"`
	Phone        *string       `json:"phone" validate:"omitempty,max=32"`
	Website      *string       `json:"website" validate:"omitempty,max=300"`
	Address      *AddressInput `json:"address"`
	Status       *string       `json:"status" validate:"omitempty,max=100"`
	Source       *string       `json:"source" validate:"omitempty,max=100"`
	Product      *string       `json:"product" validate:"omitempty,max=200"`
	Tags         []string      `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	Currency     *string       `json:"currency" validate:"omitempty,len=3"`
	Value        OptionalFloat `json:"value"`
	AssignedTo   OptionalUUID  `json:"assignedTo"`
	Public       *bool         `json:"public"`
	FollowUpDate OptionalTime  `json:"followUpDate"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=100"`
}

type TransferRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type AddNoteRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

type AddActionRequest struct {
	Type        string  `json:"type" validate:"required"`
	Description string  `json:"description" validate:"required,max=5000"`
	Outcome     *string `json:"outcome" validate:"omitempty,max=5000"`
}

type BulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
	Status string      `json:"status" validate:"required,max=100"`
}

type BulkAssignRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
	UserID uuid.UUID   `json:"userId" validate:"required"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type LeadResponse struct {
	ID               uuid.UUID       `json:"id"`
	SerialNumber     int64           `json:"serialNumber"`
	Name             string          `json:"name"`
	Company          string          `json:"company"`
	Position         string          `json:"position"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	PhoneCountryCode string          `json:"phoneCountryCode"`
	Website          string          `json:"website"`
	Address          AddressResponse `json:"address"`
	Status           string          `json:"status"`
	Source           string          `json:"source"`
	Product          string          `json:"product"`
	Tags             []string        `json:"tags"`
	Currency         string          `json:"currency"`
	Value            *float64        `json:"value"`
	AssignedTo       *uuid.UUID      `json:"assignedTo"`
	CreatedBy        uuid.UUID       `json:"createdBy"`
	UpdatedBy        *uuid.UUID      `json:"updatedBy"`
	Public           bool            `json:"public"`
	FollowUpDate     *time.Time      `json:"followUpDate"`
	LastContactAt    *time.Time      `json:"lastContactAt"`
	ContactedToday   bool            `json:"contactedToday"`
	Starred          bool            `json:"starred"`
	DeletedAt        *time.Time      `json:"deletedAt"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type LeadResult struct {
	Message string        `json:"message"`
	Success bool          `json:"success"`
	Lead    *LeadResponse `json:"lead,omitempty"`
}

type LeadListResult struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Leads   []*LeadResponse `json:"leads"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Pages   int64           `json:"pages"`
}

type BulkResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
}

type DuplicatePhoneResult struct {
	Message  string     `json:"message"`
	Success  bool       `json:"success"`
	Exists   bool       `json:"exists"`
	LeadID   *uuid.UUID `json:"leadId,omitempty"`
	LeadName string     `json:"leadName,omitempty"`
}

type DuplicateMatch struct {
	LeadID  uuid.UUID `json:"leadId"`
	Name    string    `json:"name"`
	Company string    `json:"company"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
}

type DuplicateLeadResult struct {
	Message string           `json:"message"`
	Success bool             `json:"success"`
	Matches []DuplicateMatch `json:"matches"`
}

type NoteResponse struct {
	ID         uuid.UUID      `json:"id"`
	LeadID     uuid.UUID      `json:"leadId"`
	AuthorID   *uuid.UUID     `json:"authorId"`
	AuthorRole string         `json:"authorRole"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type NoteResult struct {
	Message string        `json:"message"`
	Success bool          `json:"success"`
	Note    *NoteResponse `json:"note,omitempty"`
}

type NoteListResult struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Notes   []*NoteResponse `json:"notes"`
}

type ActionResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	AuthorID    uuid.UUID  `json:"authorId"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Outcome     *string    `json:"outcome"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ActionResult struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Action  *ActionResponse `json:"action,omitempty"`
}

type TimelineEntryResponse struct {
	Kind       string         `json:"kind"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	AuthorName string         `json:"authorName"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type TimelineResult struct {
	Message string                   `json:"message"`
	Success bool                     `json:"success"`
	Entries []*TimelineEntryResponse `json:"entries"`
}
