// Package web carries the embedded UI assets: the HTML templates rendered
// by the server and the static css/js they reference.
package web

import "embed"

// TemplatesFS holds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the static assets served under /static/.
//
//go:embed static
var StaticFS embed.FS
