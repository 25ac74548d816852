// Package io provides JSON import and export for tagged icon catalogs.
//
// # Overview
//
// A catalog is the result of tagging one sprite. Saving it lets the search
// and browse commands work without re-running the (slow, billed) tagging
// step, and lets other tools consume the tags.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "source": "icons.svg",
//	  "strategy": "symbol",
//	  "icons": [
//	    {
//	      "id": "home",
//	      "svgString": "<svg xmlns=\"http://www.w3.org/2000/svg\" ...>",
//	      "dataUri": "data:image/svg+xml;base64,...",
//	      "altText": "Home",
//	      "title": "House",
//	      "keywords": ["home", "building"]
//	    }
//	  ]
//	}
//
// Icon fields use the same names as the HTTP API. On import, a missing
// dataUri is derived from svgString and a missing keyword list becomes empty.
//
// # Import
//
// Use [ImportJSON] to read a catalog from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	cat, err := io.ImportJSON("icons.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] for catalogs, and [WriteIcons] to write
// each icon as a standalone .svg file:
//
//	paths, err := io.WriteIcons("out/", cat.Icons)
package io
