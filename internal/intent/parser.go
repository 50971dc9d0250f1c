package intent

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrUnrecognized is returned when a line matches no known verb prefix.
var ErrUnrecognized = errors.New("intent: no known verb prefix")

// ErrMissingArgument is returned when a verb that needs an argument
// arrives without one.
var ErrMissingArgument = errors.New("intent: missing argument")

// prefixEntry maps one spoken prefix to a verb. Prefixes are matched
// longest-first so that "google search" wins over "general"-style
// overlaps and "search files" wins over any shorter form.
type prefixEntry struct {
	prefix      string
	verb        Verb
	requiresArg bool
	// implicitArg fills the argument for bare no-argument forms like
	// "screenshot" and "webcam", which carry their command in the
	// prefix itself.
	implicitArg string
}

var prefixTable = []prefixEntry{
	{prefix: "exit", verb: VerbExit},
	{prefix: "general", verb: VerbGeneral},
	{prefix: "realtime", verb: VerbRealtime},
	{prefix: "open", verb: VerbOpen, requiresArg: true},
	{prefix: "close", verb: VerbClose, requiresArg: true},
	{prefix: "play", verb: VerbPlay, requiresArg: true},
	{prefix: "system", verb: VerbSystem, requiresArg: true},
	{prefix: "screenshot", verb: VerbSystem, implicitArg: "screenshot"},
	{prefix: "webcam", verb: VerbSystem, implicitArg: "webcam"},
	{prefix: "content", verb: VerbContent, requiresArg: true},
	{prefix: "google search", verb: VerbGoogleSearch, requiresArg: true},
	{prefix: "youtube search", verb: VerbYoutubeSearch, requiresArg: true},
	{prefix: "generate image", verb: VerbGenerateImage, requiresArg: true},
	{prefix: "reminder", verb: VerbReminder, requiresArg: true},
	{prefix: "task", verb: VerbTask, requiresArg: true},
	{prefix: "email", verb: VerbEmail, requiresArg: true},
	{prefix: "file", verb: VerbFile, requiresArg: true},
	{prefix: "monitor", verb: VerbMonitor},
	{prefix: "media", verb: VerbMedia, requiresArg: true},
	{prefix: "record", verb: VerbRecord, requiresArg: true},
	{prefix: "organize", verb: VerbOrganize, requiresArg: true},
	{prefix: "search files", verb: VerbSearchFiles, requiresArg: true},
	{prefix: "backup", verb: VerbBackup},
	{prefix: "security", verb: VerbSecurity},
	{prefix: "network", verb: VerbNetwork},
	{prefix: "schedule", verb: VerbSchedule, requiresArg: true},
	{prefix: "note", verb: VerbNote, requiresArg: true},
}

// sorted longest-first once at init so Parse can take the first hit.
var matchOrder []prefixEntry

func init() {
	matchOrder = make([]prefixEntry, len(prefixTable))
	copy(matchOrder, prefixTable)
	sort.SliceStable(matchOrder, func(i, j int) bool {
		return len(matchOrder[i].prefix) > len(matchOrder[j].prefix)
	})
}

// KnownPrefixes returns the spoken prefixes of the full vocabulary.
// The classifier uses this list to filter hallucinated service output.
func KnownPrefixes() []string {
	out := make([]string, len(prefixTable))
	for i, e := range prefixTable {
		out[i] = e.prefix
	}
	return out
}

// HasKnownPrefix reports whether the (lowercased, trimmed) line starts
// with any vocabulary prefix.
func HasKnownPrefix(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	for _, e := range matchOrder {
		if matchesPrefix(line, e.prefix) {
			return true
		}
	}
	return false
}

// Parse splits one directive line into a verb and its argument.
//
// The line is lowercased and trimmed, matched against the vocabulary
// longest-prefix-first, and the matched prefix plus exactly one
// following space is stripped to produce the argument.
//
// Two literal carve-outs survive from observed behavior: a line
// beginning with "open it" and the exact line "open file" parse to a
// no-op directive instead of an open action.
func Parse(line string) (Directive, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return Directive{}, ErrUnrecognized
	}

	// Intentional no-ops, preserved as-is. See DESIGN.md.
	if strings.HasPrefix(line, "open it") || line == "open file" {
		return Directive{Verb: VerbNoop, Argument: line}, nil
	}

	for _, e := range matchOrder {
		if !matchesPrefix(line, e.prefix) {
			continue
		}
		arg := strings.TrimSpace(strings.TrimPrefix(line, e.prefix))
		if arg == "" {
			arg = e.implicitArg
		}
		if arg == "" && e.requiresArg {
			return Directive{}, fmt.Errorf("%w: %q", ErrMissingArgument, line)
		}
		return Directive{Verb: e.verb, Argument: arg}, nil
	}

	return Directive{}, fmt.Errorf("%w: %q", ErrUnrecognized, line)
}

// ParseBatch parses every line, dropping the ones that fail. A bad
// line never fails the whole batch; it is logged and skipped.
func ParseBatch(lines []string) Batch {
	batch := make(Batch, 0, len(lines))
	for _, line := range lines {
		d, err := Parse(line)
		if err != nil {
			log.Warn().Str("line", line).Err(err).Msg("[Intent] Dropping unparseable directive")
			continue
		}
		batch = append(batch, d)
	}
	return batch
}

// matchesPrefix reports whether line starts with prefix at a word
// boundary, so "generally speaking" does not match "general".
func matchesPrefix(line, prefix string) bool {
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	return len(line) == len(prefix) || line[len(prefix)] == ' '
}
