package server

import "fmt"

const (
	// namePrompt is sent to a connection until it registers a unique username.
	namePrompt = "새로운 닉네임: "

	// duplicateNotice is sent in place of success when the requested
	// username is already taken.
	duplicateNotice = "---중복된 아이디입니다.---"
)

// joinNotice announces a newly registered user to every session.
func joinNotice(name string) string {
	return fmt.Sprintf("---[%s]님이 입장했습니다---", name)
}

// departNotice announces the removal of a user to the remaining sessions.
func departNotice(name string) string {
	return fmt.Sprintf("[%s]님이 퇴장했습니다.", name)
}

// chatRelay formats an ordinary chat message with its sender.
func chatRelay(name, text string) string {
	return fmt.Sprintf("[%s]: %s", name, text)
}
