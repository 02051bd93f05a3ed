package server

import "strings"

// quitToken is the client-sent string that requests graceful disconnect.
const quitToken = "/q"

type inputKind int

const (
	// inputEmpty is a message that is empty after trimming; it is dropped.
	inputEmpty inputKind = iota
	// inputChat is an ordinary chat message.
	inputChat
	// inputQuit is the quit token.
	inputQuit
	// inputCommand is any other slash-prefixed message. No commands besides
	// quit are recognized yet; the session loop ignores these.
	inputCommand
)

// input is the classified form of one inbound message.
type input struct {
	kind inputKind

	// text is the trimmed chat body, set for inputChat.
	text string

	// name and args describe a slash command, set for inputCommand.
	name string
	args []string
}

// classify parses one raw inbound message. The quit token is matched exactly
// after trimming surrounding whitespace; anything else starting with a slash
// is a command, and everything else is chat.
func classify(raw string) input {
	text := strings.TrimSpace(raw)
	if text == "" {
		return input{kind: inputEmpty}
	}

	if !strings.HasPrefix(text, "/") {
		return input{kind: inputChat, text: text}
	}

	if text == quitToken {
		return input{kind: inputQuit}
	}

	fields := strings.Fields(text)
	return input{
		kind: inputCommand,
		name: strings.TrimPrefix(fields[0], "/"),
		args: fields[1:],
	}
}
