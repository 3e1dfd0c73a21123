package service

import (
	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
)

// toLeadResponse maps a stored lead onto the wire shape. Starred is
// rendered per viewer; the raw starred set never leaves the service.
func toLeadResponse(lead *repository.Lead, viewer uuid.UUID) *transport.LeadResponse {
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}
	return &transport.LeadResponse{
		ID:               lead.ID,
		SerialNumber:     lead.SerialNumber,
		Name:             lead.Name,
		Company:          lead.Company,
		Position:         lead.Position,
		Email:            lead.Email,
		Phone:            lead.Phone,
		PhoneCountryCode: lead.PhoneCountryCode,
		Website:          lead.Website,
		Address: transport.AddressResponse{
			Street:     lead.AddressStreet,
			City:       lead.AddressCity,
			PostalCode: lead.AddressPostal,
			Country:    lead.AddressCountry,
		},
		Status:         lead.Status,
		Source:         lead.Source,
		Product:        lead.Product,
		Tags:           tags,
		Currency:       lead.Currency,
		Value:          lead.Value,
		AssignedTo:     lead.AssignedTo,
		CreatedBy:      lead.CreatedBy,
		UpdatedBy:      lead.UpdatedBy,
		Public:         lead.Public,
		FollowUpDate:   lead.FollowUpDate,
		LastContactAt:  lead.LastContactAt,
		ContactedToday: lead.ContactedToday,
		Starred:        containsUUID(lead.StarredBy, viewer),
		DeletedAt:      lead.DeletedAt,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func toNoteResponse(note *repository.Note) *transport.NoteResponse {
	return &transport.NoteResponse{
		ID:         note.ID,
		LeadID:     note.LeadID,
		AuthorID:   note.AuthorID,
		AuthorRole: note.AuthorRole,
		Type:       note.Type,
		Message:    note.Message,
		Meta:       note.Meta,
		CreatedAt:  note.CreatedAt,
	}
}

func toActionResponse(action *repository.Action) *transport.ActionResponse {
	return &transport.ActionResponse{
		ID:          action.ID,
		LeadID:      action.LeadID,
		AuthorID:    action.AuthorID,
		Type:        action.Type,
		Description: action.Description,
		Outcome:     action.Outcome,
		CreatedAt:   action.CreatedAt,
		UpdatedAt:   action.UpdatedAt,
	}
}

func toTimelineResponse(entries []*repository.TimelineEntry) []*transport.TimelineEntryResponse {
	out := make([]*transport.TimelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, &transport.TimelineEntryResponse{
			Kind:       e.Kind,
			Type:       e.Type,
			Message:    e.Message,
			AuthorName: e.AuthorName,
			Meta:       e.Meta,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
