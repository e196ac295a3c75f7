package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown             = "UNKNOWN"
	CodeRoomAlreadyExists   = "ROOM_ALREADY_EXISTS"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomNoGame          = "ROOM_NO_GAME"
	CodeAlreadyMember       = "PARTICIPANT_ALREADY_MEMBER"
	CodeNotMember           = "PARTICIPANT_NOT_MEMBER"
	CodeUnknownUser         = "PARTICIPANT_UNKNOWN_USER"
	CodeInvalidInState      = "COMMAND_INVALID_IN_STATE"
	CodeNoSubmissions       = "POLL_NO_SUBMISSIONS"
	CodePollClosed          = "POLL_ALREADY_CLOSED"
	CodePollNotOpen         = "POLL_NOT_OPEN"
	CodeRoundsExhausted     = "ROUNDS_EXHAUSTED"
	CodeCorrelationNotFound = "CORRELATION_NOT_FOUND"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeTemplateMissing     = "TEMPLATE_MISSING"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[string]string{
		CodeUnknown: "Something went wrong, please try again",

		// Room errors
		CodeRoomAlreadyExists: "A game room already exists in this chat",
		CodeRoomNotFound:      "There is no game room in this chat; type /start first",
		CodeRoomNoGame:        "No game is running in this room",

		// Participant errors
		CodeAlreadyMember: "You have already been added to the game",
		CodeNotMember:     "You are not a participant of this game",
		CodeUnknownUser:   "You are not a participant of the game, please type /add_me first",

		// Conversation errors
		CodeInvalidInState: "That command is not available right now",

		// Round errors
		CodeNoSubmissions:   "Nobody has sent a definition yet, the vote cannot start",
		CodePollClosed:      "Voting has already finished for this round",
		CodePollNotOpen:     "There is no open vote in this round",
		CodeRoundsExhausted: "You are out of words",

		// Correlation errors
		CodeCorrelationNotFound: "I could not match your reply to a running round",

		// Collaborator errors
		CodeProviderUnavailable: "The word source is unavailable, try starting the game again later",
		CodeTemplateMissing:     "Message template {{.Key}} is missing",
	},
}
