package models

import "strings"

// CommandType enumerates supported owner chat commands.
type CommandType string

const (
	CommandStats     CommandType = "stats"
	CommandLosing    CommandType = "losing"
	CommandAnomalies CommandType = "anomalies"
	CommandTodo      CommandType = "todo"
	CommandRate      CommandType = "rate"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandStats):     CommandStats,
	string(CommandLosing):    CommandLosing,
	string(CommandAnomalies): CommandAnomalies,
	string(CommandTodo):      CommandTodo,
	string(CommandRate):      CommandRate,
	string(CommandHelp):      CommandHelp,
}

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.TrimPrefix(tokens[0], "/")
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
