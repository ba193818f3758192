// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to an empty string rather than an
// error, leaving the rejection to the validators.
//
// Normalization includes:
//   - Free text (names, purposes): trim and collapse inner whitespace
//   - Emails: trim and lowercase
//   - Identifiers: trim
//   - Room features: lowercase, runs of non letters/digits become a single hyphen,
//     so "Smart Board" becomes "smart-board"
//   - Slices: drop duplicates and empty values after normalization
package sanitizer
