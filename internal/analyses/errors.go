package analyses

import "errors"

var (
	ErrInvalidClause   = errors.New("invalid clause")
	ErrEmptyClause     = errors.New("empty clause")
	ErrInvalidDocument = errors.New("invalid document")
	ErrNoSample        = errors.New("no sample agreement loaded")
)

const (
	MaxClauseLength   = 100
	MaxDocumentLength = 10000
)

// Messages returned to callers for rejected input.
const (
	MessageInvalidClause   = "Invalid clause provided."
	MessageEmptyClause     = "No clause provided."
	MessageInvalidDocument = "Invalid or empty document provided."
)
