package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionPrefixes(t *testing.T) {
	tests := []struct {
		line string
		verb Verb
		arg  string
	}{
		{"open chrome", VerbOpen, "chrome"},
		{"close notepad", VerbClose, "notepad"},
		{"play afsanay", VerbPlay, "afsanay"},
		{"system mute", VerbSystem, "mute"},
		{"content application for sick leave", VerbContent, "application for sick leave"},
		{"google search cats", VerbGoogleSearch, "cats"},
		{"youtube search lo-fi mix", VerbYoutubeSearch, "lo-fi mix"},
		{"general who is akbar", VerbGeneral, "who is akbar"},
		{"realtime todays news", VerbRealtime, "todays news"},
		{"generate image a lion", VerbGenerateImage, "a lion"},
		{"reminder 9pm call mom", VerbReminder, "9pm call mom"},
		{"task create finish report", VerbTask, "create finish report"},
		{"search files report", VerbSearchFiles, "report"},
		{"note buy milk", VerbNote, "buy milk"},
	}

	for _, tt := range tests {
		d, err := Parse(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		assert.Equal(t, tt.verb, d.Verb, "line %q", tt.line)
		assert.Equal(t, tt.arg, d.Argument, "line %q", tt.line)
	}
}

func TestParseLongestPrefixWins(t *testing.T) {
	// "google search" and "search files" must not lose to shorter
	// overlapping prefixes.
	d, err := Parse("google search golang generics")
	require.NoError(t, err)
	assert.Equal(t, VerbGoogleSearch, d.Verb)
	assert.Equal(t, "golang generics", d.Argument)

	d, err = Parse("search files tax 2025")
	require.NoError(t, err)
	assert.Equal(t, VerbSearchFiles, d.Verb)
	assert.Equal(t, "tax 2025", d.Argument)
}

func TestParseWordBoundary(t *testing.T) {
	// "generally speaking" must not match the "general" prefix.
	_, err := Parse("generally speaking")
	assert.ErrorIs(t, err, ErrUnrecognized)

	// "opening ceremony" must not match "open".
	_, err = Parse("opening ceremony")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseNoopCarveOuts(t *testing.T) {
	for _, line := range []string{"open it", "open it now", "open file"} {
		d, err := Parse(line)
		require.NoError(t, err, "line %q", line)
		assert.Equal(t, VerbNoop, d.Verb, "line %q", line)
	}

	// "open files" is not the literal carve-out and parses as an open.
	d, err := Parse("open files")
	require.NoError(t, err)
	assert.Equal(t, VerbOpen, d.Verb)
	assert.Equal(t, "files", d.Argument)
}

func TestParseImplicitArguments(t *testing.T) {
	d, err := Parse("screenshot")
	require.NoError(t, err)
	assert.Equal(t, VerbSystem, d.Verb)
	assert.Equal(t, "screenshot", d.Argument)

	d, err = Parse("webcam")
	require.NoError(t, err)
	assert.Equal(t, VerbSystem, d.Verb)
	assert.Equal(t, "webcam", d.Argument)
}

func TestParseMissingArgument(t *testing.T) {
	for _, line := range []string{"open", "close", "play", "google search"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrMissingArgument, "line %q", line)
	}
}

func TestParseNormalizesCase(t *testing.T) {
	d, err := Parse("  Open Chrome  ")
	require.NoError(t, err)
	assert.Equal(t, VerbOpen, d.Verb)
	assert.Equal(t, "chrome", d.Argument)
}

func TestParseUnrecognized(t *testing.T) {
	for _, line := range []string{"", "dance for me", "the answer is"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrUnrecognized, "line %q", line)
	}
}

func TestParseBatchDropsBadLines(t *testing.T) {
	batch := ParseBatch([]string{
		"open chrome",
		"sing a song",
		"general how are you",
		"open",
	})

	require.Len(t, batch, 2)
	assert.Equal(t, VerbOpen, batch[0].Verb)
	assert.Equal(t, VerbGeneral, batch[1].Verb)
}

func TestVocabularyClosure(t *testing.T) {
	// Every prefix in the table parses back to its own verb, so the
	// vocabulary the classifier filters against and the vocabulary the
	// parser accepts are the same set.
	for _, prefix := range KnownPrefixes() {
		assert.True(t, HasKnownPrefix(prefix), "prefix %q", prefix)
		d, err := Parse(prefix + " something")
		require.NoError(t, err, "prefix %q", prefix)
		assert.True(t, d.Verb.IsValid(), "prefix %q", prefix)
	}
}

func TestVerbClass(t *testing.T) {
	assert.Equal(t, ClassAnswer, VerbGeneral.Class())
	assert.Equal(t, ClassAnswer, VerbRealtime.Class())
	assert.Equal(t, ClassControl, VerbExit.Class())
	assert.Equal(t, ClassControl, VerbNoop.Class())
	assert.Equal(t, ClassAction, VerbOpen.Class())
	assert.Equal(t, ClassAction, VerbGoogleSearch.Class())
}

func TestBatchPartition(t *testing.T) {
	batch := Batch{
		{Verb: VerbOpen, Argument: "chrome"},
		{Verb: VerbGeneral, Argument: "who is akbar"},
		{Verb: VerbRealtime, Argument: "todays weather"},
		{Verb: VerbClose, Argument: "notepad"},
		{Verb: VerbNoop, Argument: "open it"},
	}

	actions := batch.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, VerbOpen, actions[0].Verb)
	assert.Equal(t, VerbClose, actions[1].Verb)

	answers := batch.Answers()
	require.Len(t, answers, 2)
	assert.Equal(t, VerbGeneral, answers[0].Verb)
	assert.Equal(t, VerbRealtime, answers[1].Verb)

	assert.False(t, batch.HasExit())
	assert.True(t, batch.HasRealtime())
	assert.True(t, Batch{{Verb: VerbExit}}.HasExit())
}
