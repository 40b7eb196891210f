package dto

import "encoding/json"

// SessionPayload is one weekly occurrence in wire form (HH:MM clocks).
type SessionPayload struct {
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// CreateSectionRequest registers one selectable offering of a subject.
type CreateSectionRequest struct {
	Name         string           `json:"name" validate:"required,max=120"`
	SectionLabel string           `json:"sectionLabel" validate:"omitempty,max=60"`
	Credits      int              `json:"credits" validate:"min=0"`
	NoTime       bool             `json:"noTime"`
	Sessions     []SessionPayload `json:"sessions" validate:"omitempty,dive"`
	Active       *bool            `json:"active"`
}

// UpdateSectionRequest modifies an existing section.
type UpdateSectionRequest struct {
	Name         string           `json:"name" validate:"required,max=120"`
	SectionLabel string           `json:"sectionLabel" validate:"omitempty,max=60"`
	Credits      int              `json:"credits" validate:"min=0"`
	NoTime       bool             `json:"noTime"`
	Sessions     []SessionPayload `json:"sessions" validate:"omitempty,dive"`
	Active       *bool            `json:"active"`
}

// Structured mutation operation names. These are the boundary with the
// natural-language interpreter: by the time a request reaches this service it
// is already one of these structured operations, never free text.
const (
	MutationAddSection    = "add-section"
	MutationUpdateSubject = "update-subject"
	MutationRemoveSubject = "remove-subject"
	MutationSetFilter     = "set-filter"
)

// MutationOp is one structured edit applied to the caller's section list.
type MutationOp struct {
	Op      string          `json:"op" validate:"required,oneof=add-section update-subject remove-subject set-filter"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// BatchMutationRequest applies ops in order, stopping at the first failure.
type BatchMutationRequest struct {
	Ops []MutationOp `json:"ops" validate:"required,min=1,max=32,dive"`
}

// MutationResult reports how far a batch got.
type MutationResult struct {
	Applied int                `json:"applied"`
	Filter  *FilterSpecRequest `json:"filter,omitempty"`
}

// RemoveSubjectPayload removes every section of a subject by name.
type RemoveSubjectPayload struct {
	Name string `json:"name" validate:"required"`
}

// UpdateSubjectPayload patches one section by id.
type UpdateSubjectPayload struct {
	SectionID string               `json:"sectionId" validate:"required"`
	Changes   UpdateSectionRequest `json:"changes" validate:"required"`
}
