package web

import "embed"

// TemplatesFS embeds the calculator page and its htmx fragments.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the small htmx glue script.
//
//go:embed static/*
var StaticFS embed.FS
