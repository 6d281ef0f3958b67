// Package logging builds the slog loggers used across animecat.
//
// Console output is rendered by tint, JSON output uses the standard slog JSON
// handler with short keys, and an optional rotating file sink (lumberjack)
// receives a JSON copy of every record. Helpers such as WarnWithContext keep
// warning lines consistent by always carrying event_type, error_hint, and
// impact fields.
package logging
