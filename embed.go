package inkwell

import "embed"

// EmbeddedAssets contains assets shipped with inkwell. The default
// stylesheet is served at /public/style.css unless the static directory
// provides its own.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
