package leads

import "errors"

var (
	// ErrMissingLeadType is returned when a lead has no tier at all.
	ErrMissingLeadType = errors.New("lead type is required")

	// ErrInvalidLeadType is returned when the tier is outside the closed enum.
	ErrInvalidLeadType = errors.New("lead type must be enterprise, smb, or individual")

	// ErrMissingName is returned when the name is empty.
	ErrMissingName = errors.New("lead name is required")

	// ErrInvalidPriority is returned for a priority outside the known set.
	ErrInvalidPriority = errors.New("priority must be normal, high, or urgent")

	// ErrEmptyLead is returned when a record has no routable content at all.
	ErrEmptyLead = errors.New("lead has no name or contact details")

	// ErrLeadNotFound is returned when a lead is not found.
	ErrLeadNotFound = errors.New("lead not found")
)
