package domain

// CommandType classifies what the user wants the recipe timer to do.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandAdvance
	CommandPause
	CommandResume
	CommandRepeat
	CommandStatus
	CommandHelp
	CommandQuit
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandAdvance:
		return "advance"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandRepeat:
		return "repeat"
	case CommandStatus:
		return "status"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command represents a parsed user action against the command surface.
type Command struct {
	Type    CommandType
	Payload string // raw input, kept for unknown commands
}
