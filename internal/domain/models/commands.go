package models

import "strings"

// CommandType enumerates the manager chat commands.
type CommandType string

const (
	CommandStock   CommandType = "stock"
	CommandAlerts  CommandType = "alerts"
	CommandRevenue CommandType = "revenue"
	CommandHours   CommandType = "hours"
	CommandUnknown CommandType = "unknown"
)

// Command is a parsed manager instruction extracted from a chat message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(message)))
	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.TrimPrefix(tokens[0], "/")); head {
	case CommandStock, CommandAlerts, CommandRevenue, CommandHours:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
