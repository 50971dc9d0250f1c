// Package intent implements the first decision layer of the assistant.
// It turns one free-text utterance into an ordered batch of typed
// directives: the Classifier asks an external decision service what the
// utterance means, and the Parser validates each returned line against
// the fixed verb vocabulary.
package intent

import "strings"

// Verb is one instruction kind from the closed directive vocabulary.
type Verb string

const (
	// VerbGeneral marks a conversational query answered by the chat model.
	VerbGeneral Verb = "general"
	// VerbRealtime marks a query that needs live web data to answer.
	VerbRealtime Verb = "realtime"
	// VerbExit ends the conversation.
	VerbExit Verb = "exit"
	// VerbNoop is produced by the parser carve-outs ("open it",
	// "open file") and is skipped by the dispatcher.
	VerbNoop Verb = "noop"

	// VerbOpen launches an application or website.
	VerbOpen Verb = "open"
	// VerbClose terminates an application.
	VerbClose Verb = "close"
	// VerbPlay plays a song or video.
	VerbPlay Verb = "play"
	// VerbSystem runs a system control command (volume, screenshot, ...).
	VerbSystem Verb = "system"
	// VerbContent writes generated content to a file and opens it.
	VerbContent Verb = "content"
	// VerbGoogleSearch opens a Google search for a topic.
	VerbGoogleSearch Verb = "google search"
	// VerbYoutubeSearch opens a YouTube search for a topic.
	VerbYoutubeSearch Verb = "youtube search"

	// Extension verbs. Their back-ends are leaf collaborators; the
	// dispatcher treats them exactly like the core action verbs.
	VerbGenerateImage Verb = "generate image"
	VerbReminder      Verb = "reminder"
	VerbTask          Verb = "task"
	VerbEmail         Verb = "email"
	VerbFile          Verb = "file"
	VerbMonitor       Verb = "monitor"
	VerbMedia         Verb = "media"
	VerbRecord        Verb = "record"
	VerbOrganize      Verb = "organize"
	VerbSearchFiles   Verb = "search files"
	VerbBackup        Verb = "backup"
	VerbSecurity      Verb = "security"
	VerbNetwork       Verb = "network"
	VerbSchedule      Verb = "schedule"
	VerbNote          Verb = "note"
)

// Class groups verbs by what the dispatcher does with them.
type Class int

const (
	// ClassAction verbs are independent side-effecting commands that
	// fan out concurrently.
	ClassAction Class = iota
	// ClassAnswer verbs produce the single merged spoken answer.
	ClassAnswer
	// ClassControl verbs steer the conversation loop (exit, noop).
	ClassControl
)

// String returns the verb's canonical spoken form.
func (v Verb) String() string { return string(v) }

// Class reports how the dispatcher treats this verb.
func (v Verb) Class() Class {
	switch v {
	case VerbGeneral, VerbRealtime:
		return ClassAnswer
	case VerbExit, VerbNoop:
		return ClassControl
	default:
		return ClassAction
	}
}

// IsValid reports whether v is part of the known vocabulary.
func (v Verb) IsValid() bool {
	for _, e := range prefixTable {
		if e.verb == v {
			return true
		}
	}
	return v == VerbNoop
}

// Directive is one parsed (verb, argument) instruction.
type Directive struct {
	Verb     Verb   `json:"verb"`
	Argument string `json:"argument"`
}

// Batch is the ordered sequence of directives produced from one
// utterance. Order is the order returned by the decision service and
// must be preserved for deterministic answer merging.
type Batch []Directive

// Actions returns the side-effecting directives, in batch order.
func (b Batch) Actions() []Directive {
	var out []Directive
	for _, d := range b {
		if d.Verb.Class() == ClassAction {
			out = append(out, d)
		}
	}
	return out
}

// Answers returns the answer-class directives, in batch order.
func (b Batch) Answers() []Directive {
	var out []Directive
	for _, d := range b {
		if d.Verb.Class() == ClassAnswer {
			out = append(out, d)
		}
	}
	return out
}

// Describe renders the batch compactly for logs and status lines.
func (b Batch) Describe() string {
	parts := make([]string, len(b))
	for i, d := range b {
		parts[i] = string(d.Verb) + "(" + d.Argument + ")"
	}
	return strings.Join(parts, ", ")
}

// HasExit reports whether the batch asks to end the conversation.
func (b Batch) HasExit() bool {
	for _, d := range b {
		if d.Verb == VerbExit {
			return true
		}
	}
	return false
}

// HasRealtime reports whether any answer directive needs live data.
func (b Batch) HasRealtime() bool {
	for _, d := range b {
		if d.Verb == VerbRealtime {
			return true
		}
	}
	return false
}
