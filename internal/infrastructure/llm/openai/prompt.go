package openai

const systemInstruction = "You are an information extraction engine. " +
	"You read articles and return structured facts about them."

func buildExtractionPrompt(text string) string {
	return `Reply with a single strict JSON object and nothing else. No markdown, no commentary.

Rules:
1. Summarize the article once per language it is written in; each summary is one string in "article_summary".
2. Collect every demonym or country name mentioned, in any language, into "nationalities", deduplicated.
3. Collect formal organization names only into "organizations".
4. Collect full person names into "people"; exclude bare titles such as "President" or "CEO".
5. List every language the article is written in into "language".

If a field has no values, return an empty array for it rather than omitting the key.

Article:
` + text
}
