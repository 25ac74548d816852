// Package tagging turns icon rasters into human-readable descriptions.
//
// A [Description] is a short title plus search keywords. The [Tagger]
// builds a visual-first prompt, sends the raster to a vision [Service]
// (normally [gemini.Client]) and normalizes the answer. It never fails: any
// error is logged and reported as the [Failed] sentinel, so one bad icon
// cannot stop a batch.
//
//	tagger := tagging.NewTagger(gemini.NewClient(key, ""), logger)
//	desc := tagger.Describe(ctx, pngDataURI, "home")
//	if desc.Failed() {
//	    // sentinel {"Analysis Failed", ["error"]}
//	}
//
// [Cached] wraps any [Describer] with a [cache.Cache]. Only successful
// descriptions are stored.
//
// [gemini.Client]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/integrations/gemini#Client
package tagging
