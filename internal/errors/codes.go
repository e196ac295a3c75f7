// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Room errors
	CodeRoomAlreadyExists Code = "ROOM_ALREADY_EXISTS"
	CodeRoomNotFound      Code = "ROOM_NOT_FOUND"
	CodeRoomNoGame        Code = "ROOM_NO_GAME"

	// Participant errors
	CodeAlreadyMember Code = "PARTICIPANT_ALREADY_MEMBER"
	CodeNotMember     Code = "PARTICIPANT_NOT_MEMBER"
	CodeUnknownUser   Code = "PARTICIPANT_UNKNOWN_USER"

	// Conversation errors
	CodeInvalidInState Code = "COMMAND_INVALID_IN_STATE"

	// Round errors
	CodeNoSubmissions   Code = "POLL_NO_SUBMISSIONS"
	CodePollClosed      Code = "POLL_ALREADY_CLOSED"
	CodePollNotOpen     Code = "POLL_NOT_OPEN"
	CodeRoundsExhausted Code = "ROUNDS_EXHAUSTED"

	// Correlation errors
	CodeCorrelationNotFound Code = "CORRELATION_NOT_FOUND"

	// Collaborator errors
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	CodeTemplateMissing     Code = "TEMPLATE_MISSING"
)

// Severity classifies how a code should be surfaced to the triggering user.
type Severity int

const (
	// SeverityRejected marks policy rejections: recoverable, surfaced to
	// the user, room state unchanged.
	SeverityRejected Severity = iota
	// SeverityLookupMiss marks lookup misses: treated as a no-op, notified
	// only when the actor is identifiable.
	SeverityLookupMiss
	// SeverityCollaborator marks collaborator failures: isolated to the
	// operation that invoked the collaborator.
	SeverityCollaborator
)

// Severity maps a code to its surfacing class.
func (c Code) Severity() Severity {
	switch c {
	case CodeRoomAlreadyExists,
		CodeAlreadyMember,
		CodeNotMember,
		CodeInvalidInState,
		CodeNoSubmissions,
		CodePollClosed,
		CodePollNotOpen,
		CodeRoundsExhausted:
		return SeverityRejected

	case CodeRoomNotFound,
		CodeRoomNoGame,
		CodeUnknownUser,
		CodeCorrelationNotFound:
		return SeverityLookupMiss

	case CodeProviderUnavailable,
		CodeTemplateMissing:
		return SeverityCollaborator

	default:
		return SeverityCollaborator
	}
}
