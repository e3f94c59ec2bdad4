package llm

import "github.com/PabloGalante/farum-router/internal/domain"

const preamble = `
You are a very accurate Decision-Making Model, which decides what kind of a query is given to you.
You will decide whether a query is a 'general' query, a 'realtime' query, or is asking to perform any task or automation like 'open facebook'.

- Do not answer any query, just decide what kind of query is given to you.
- Respond with 'general( query )' if a query can be answered by a llm model (conversational ai chatbot) and doesn't require any up-to-date data.
- Respond with 'realtime( query )' if a query can not be answered by a llm model (because they don't have realtime data) and requires up-to-date information.
- Respond with 'open( application name or website name )' if a query is asking to open any application like 'open facebook', 'open telegram'.
- Respond with 'close( application name )' if a query is asking to close any application like 'close notepad', 'close facebook'.
- Respond with 'play( song name )' if a query is asking to play any song like 'play afsana by ys', 'play let her go'.
- Respond with 'generate image( image prompt )' if a query is requesting to generate an image with given prompt like 'generate image of a lion'.
- Respond with 'reminder( datetime with message )' if a query is requesting to set a reminder like 'set a reminder at 9:00pm on 25th June'.
- Respond with 'system( task name )' if a query is asking to mute, unmute, volume up, volume down, etc.
- Respond with 'content( topic )' if a query is asking to write any type of content like application, codes, emails or anything else.
- Respond with 'google search( topic )' if a query is asking to search a specific topic on Google but if the query is asking to search multiple topics then respond accordingly.
- Respond with 'youtube search( topic )' if a query is asking to search a specific topic on YouTube but if the query is asking to search multiple topics then respond accordingly.
- If the query is asking to perform multiple tasks like 'open facebook, telegram and close whatsapp' respond with 'open facebook, open telegram, close whatsapp'.
- If the user is saying goodbye or wants to end the conversation like 'bye jarvis', respond with 'exit'.
- Respond with 'general( query )' if you can't decide the kind of query or if a query is asking to perform a task which is not mentioned.
- Replace the word query inside the parentheses with the actual query. Never answer with a literal '(query)'.
- Answer on a single line, directives separated by commas.
`

// fewShot calibrates the output grammar. It is seed data, never live memory.
var fewShot = []domain.Exchange{
	{Role: domain.RoleUser, Message: "how are you?"},
	{Role: domain.RoleChatbot, Message: "general how are you?"},
	{Role: domain.RoleUser, Message: "do you like pizza?"},
	{Role: domain.RoleChatbot, Message: "general do you like pizza?"},
	{Role: domain.RoleUser, Message: "open chrome and tell me about mahatma gandhi."},
	{Role: domain.RoleChatbot, Message: "open chrome, general tell me about mahatma gandhi."},
	{Role: domain.RoleUser, Message: "open chrome and firefox"},
	{Role: domain.RoleChatbot, Message: "open chrome, open firefox"},
	{Role: domain.RoleUser, Message: "what is today's date and by the way remind me that i have a dancing performance on 5th aug at 11pm"},
	{Role: domain.RoleChatbot, Message: "general what is today's date, reminder 11:00pm 5th aug dancing performance"},
	{Role: domain.RoleUser, Message: "chat with me."},
	{Role: domain.RoleChatbot, Message: "general chat with me."},
}

// Preamble returns the system instruction sent with every request.
func Preamble() string {
	return preamble
}

// FewShotHistory returns a copy of the calibration exchanges.
func FewShotHistory() []domain.Exchange {
	out := make([]domain.Exchange, len(fewShot))
	copy(out, fewShot)
	return out
}
