package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/Arya182-ui/supriya/internal/llm"
)

// decisionPreamble instructs the first-layer model to label, never
// answer, the user's query. The verb list here must stay in step with
// the intent package's vocabulary.
const decisionPreamble = `You are a very accurate Decision-Making Model, which decides what kind of a query is given to you.
You will decide whether a query is a 'general' query, a 'realtime' query, or is asking to perform any task or automation like 'open facebook, instagram', 'can you write a application and open it in notepad'.
*** Do not answer any query, just decide what kind of query is given to you. ***
-> Respond with 'general ( query )' if a query can be answered by a llm model (conversational ai chatbot) and doesn't require any up to date information, like 'who was akbar?', 'how can i study more effectively?', 'what is python programming language?'. Also respond with 'general ( query )' if the query has no proper noun or is incomplete like 'who is he?', 'tell me more about him.', or asks about time, day, date, month or year.
-> Respond with 'realtime ( query )' if a query can not be answered by a llm model (because they don't have realtime data) and requires up to date information, like 'who is indian prime minister', 'tell me news about coronavirus.', 'what is today's headline?', or asks about any individual or thing like 'who is akshay kumar'.
-> Respond with 'open (application name or website name)' if a query is asking to open any application, and with 'open 1st application name, open 2nd application name' for multiple.
-> Respond with 'close (application name)' if a query is asking to close any application, one 'close' per application.
-> Respond with 'play (song name)' if a query is asking to play any song, one 'play' per song.
-> Respond with 'generate image (image prompt)' if a query is requesting to generate an image with a given prompt.
-> Respond with 'reminder (datetime with message)' for reminder requests like 'set a reminder at 9:00pm on 25th june for my business meeting' -> 'reminder 9:00pm 25th june business meeting'.
-> Respond with 'task (task action and details)' for task management like 'create task buy groceries', 'mark task as complete', 'show my tasks'.
-> Respond with 'email (email action and details)' for email management like 'read my emails', 'send email to john'.
-> Respond with 'file (file operation and details)' for file management like 'list files in downloads', 'delete file', 'copy file'.
-> Respond with 'monitor (system monitoring request)' for system monitoring like 'check system status', 'show cpu usage'.
-> Respond with 'media (media control action)' for media control like 'pause song', 'next track', 'volume up the music'.
-> Respond with 'record (recording type and details)' for recording requests like 'record audio', 'start video recording'.
-> Respond with 'organize (organization request)' for organizing files like 'organize downloads folder', 'clean up desktop'.
-> Respond with 'search files (search query)' for file search like 'find document about budget'.
-> Respond with 'backup (backup request)' for backup requests like 'backup my files', 'restore backup'.
-> Respond with 'security (security action)' for security actions like 'check security logs', 'scan for threats'.
-> Respond with 'network (network action)' for network operations like 'check internet connection', 'show network status'.
-> Respond with 'schedule (scheduling action)' for scheduling like 'schedule meeting', 'add to calendar'.
-> Respond with 'note (note action)' for note taking like 'take note', 'save this information'.
-> Respond with 'system (task name)' if a query is asking to mute, unmute, volume up, volume down, change brightness, shutdown, restart, take screenshot, show clipboard or open the webcam, one 'system' per task.
-> Respond with 'content (topic)' if a query is asking to write any type of content like application, codes, emails or anything else about a specific topic, one 'content' per topic.
-> Respond with 'google search (topic)' if a query is asking to search a specific topic on google, one per topic.
-> Respond with 'youtube search (topic)' if a query is asking to search a specific topic on youtube, one per topic.
*** If the query is asking to perform multiple tasks like 'open facebook, telegram and close whatsapp' respond with 'open facebook, open telegram, close whatsapp'. ***
*** If the user is saying goodbye or wants to end the conversation, respond with 'exit'. ***
*** Respond with 'general ( query )' if you can't decide the kind of query or if a query is asking to perform a task which is not mentioned above. ***`

// decisionExamples is the few-shot priming history sent with every
// decision request.
var decisionExamples = []llm.Message{
	{Role: "user", Content: "how are you?"},
	{Role: "assistant", Content: "general how are you?"},
	{Role: "user", Content: "do you like pizza?"},
	{Role: "assistant", Content: "general do you like pizza?"},
	{Role: "user", Content: "open chrome and tell me about mahatma gandhi."},
	{Role: "assistant", Content: "open chrome, general tell me about mahatma gandhi."},
	{Role: "user", Content: "open chrome and firefox"},
	{Role: "assistant", Content: "open chrome, open firefox"},
	{Role: "user", Content: "what is today's date and by the way remind me that i have a dancing performance on 11:00 pm 6 jan"},
	{Role: "assistant", Content: "general what is today's date, reminder 11:00 pm 6 jan dancing performance"},
}

// DecisionModel adapts an llm.Provider into the classifier's
// DecisionService boundary, carrying the preamble and few-shot
// history. It is stateless per call and safe for concurrent use.
type DecisionModel struct {
	provider llm.Provider
}

// NewDecisionModel creates a DecisionModel on the given provider.
func NewDecisionModel(provider llm.Provider) *DecisionModel {
	return &DecisionModel{provider: provider}
}

// Decide asks the decision model to label one utterance.
func (m *DecisionModel) Decide(ctx context.Context, utterance string) (string, error) {
	msgs := make([]llm.Message, 0, len(decisionExamples)+1)
	msgs = append(msgs, decisionExamples...)
	msgs = append(msgs, llm.Message{Role: "user", Content: utterance})

	resp, err := m.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: decisionPreamble,
		Messages:     msgs,
	})
	if err != nil {
		return "", fmt.Errorf("decision model: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
