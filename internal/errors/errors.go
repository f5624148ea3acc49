// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrPartnerNotFound        = errors.New("partner not found")
	ErrTemplateNotFound       = errors.New("template not found")
	ErrDispatchInProgress     = errors.New("a dispatch is already running for this campaign")
	ErrTransportNotConfigured = errors.New("mail transport is not configured")
	ErrEmptyContent           = errors.New("campaign has no content to send")
	ErrNoRecipients           = errors.New("no recipients selected")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrLeaseLost              = errors.New("dispatch lease no longer held")
)

// ErrCampaignNotFound is returned when no campaign row matches the id.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

func IsCampaignNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}

// ErrInvalidTransition rejects a status change the campaign state machine forbids.
type ErrInvalidTransition struct {
	From, To string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("campaign cannot move from %s to %s", e.From, e.To)
}

func NewInvalidTransition(from, to string) error {
	return &ErrInvalidTransition{From: from, To: to}
}

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Error)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func NewValidationError(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}
