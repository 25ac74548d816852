// Package integrations provides HTTP clients for external services.
//
// # Overview
//
// Icons are described by a vision-capable language model. Each provider has
// its own subpackage:
//
//   - [gemini]: Google Gemini generateContent API
//
// # Client Pattern
//
// Provider clients embed the shared [Client]. It sends JSON requests with
// default headers and a User-Agent, retries network errors, 5xx and 429
// responses with exponential backoff, and reports each request to the HTTP
// observability hooks. Status codes map to [ErrUnauthorized],
// [ErrRateLimited], [ErrBadRequest], [ErrNotFound] and [ErrNetwork].
//
// Usage:
//
//	client := gemini.NewClient(apiKey, gemini.DefaultModel)
//	answer, err := client.Describe(ctx, pngBase64, prompt)
//
// [gemini]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/integrations/gemini
package integrations
