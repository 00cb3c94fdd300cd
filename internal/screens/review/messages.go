package review

import "time"

// sessionReadyMsg is sent when the session has loaded its queue.
type sessionReadyMsg struct {
	Err error
}

// feedbackDoneMsg is sent when the answer feedback period ends.
type feedbackDoneMsg struct{}

// feedbackDelay is how long correct/incorrect feedback stays on screen
// before the next item appears.
const feedbackDelay = time.Second
