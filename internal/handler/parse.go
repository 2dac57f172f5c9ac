package handler

import (
	"strconv"
	"strings"
)

// Command is one parsed input line.
type Command struct {
	Name string // lowercase, without the leading slash
	Args []string
	Raw  string
}

// Parse splits "/cmd arg1 arg2" into a command. A line without the leading
// slash is local chat.
func Parse(input string) Command {
	line := strings.TrimSpace(input)
	if line == "" {
		return Command{}
	}
	if !strings.HasPrefix(line, "/") {
		return Command{Name: "say", Args: strings.Fields(line), Raw: line}
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Command{Raw: line}
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:], Raw: line}
}

// splitAmount separates a trailing count from an item phrase:
// "iron sword 2" → ("iron sword", 2, true).
func splitAmount(args []string) (phrase string, amount int, ok bool) {
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			return strings.Join(args[:len(args)-1], " "), n, true
		}
	}
	return strings.Join(args, " "), 0, false
}

// isMoneyWord reports whether an item phrase names the coin pile.
func isMoneyWord(s string) bool {
	switch strings.ToLower(s) {
	case "gold", "money", "coins", "coin":
		return true
	}
	return false
}
