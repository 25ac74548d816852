// Package gemini provides an HTTP client for the Google Gemini
// generateContent API.
//
// # Overview
//
// The client sends one PNG image plus a text prompt and asks the model for a
// structured JSON answer matching a fixed response schema:
//
//	{"title": "User Profile", "keywords": ["person", "account", "avatar"]}
//
// # Usage
//
//	client := gemini.NewClient(apiKey, gemini.DefaultModel)
//	answer, err := client.Describe(ctx, pngBase64, prompt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(answer.Title, answer.Keywords)
//
// # Errors
//
// Transport failures surface as the sentinels of the integrations package
// ([integrations.ErrUnauthorized], [integrations.ErrRateLimited], ...).
// Answers are checked as well: a response without candidate text yields an
// EMPTY_RESPONSE error carrying the finish reason, and text that is not the
// expected JSON object yields INVALID_RESPONSE.
//
// The API key is sent in the x-goog-api-key header, never in the URL.
package gemini
