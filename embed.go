package folio

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// folio.css, the default site stylesheet.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
