// Package statefile reads and writes the engine's collaborator-facing file
// formats.
//
// Two formats are supported. Saved-function files are plain text: a
// <PARAMETERS> block with one "name, value, isFreeFlag" line per parameter,
// followed by a <FORMULA> block holding the raw formula text. Session
// snapshots are binary: a magic header, a one-byte compression tag, and a
// compressed payload carrying the formula, the full parameter vector and the
// dataset columns.
package statefile
