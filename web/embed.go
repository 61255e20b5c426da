package web

import "embed"

// Content holds the HTML templates and static assets.
//
//go:embed templates/*.html static/*
var Content embed.FS
