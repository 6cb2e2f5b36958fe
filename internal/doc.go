// Package internal documents the Thai Visa Checklist server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, rendering, and routing
// - checklist, content, reporting, contact: the site's domain
// - email, locale, sanitize, validation: supporting services
// - config, metrics, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
