// Package sanitizer normalizes user supplied text before validation and
// storage.
//
// All functions are idempotent and never fail: unusable input collapses to
// the empty string, which the validators then reject.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number])
//   - Emails: trimmed and lowercased
//   - Names and cities: whitespace collapsed
//   - Free text: whitespace collapsed and truncated to a maximum rune count
//   - Slices: duplicates and empty values removed after normalization
package sanitizer
