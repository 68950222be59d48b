// Package template provides a **compile-able** strategy skeleton.
//
// It is intentionally NOT registered via init(), so it never shows up in
// discovery. Copy this package to contribute a new strategy following the
// project's standard patterns.
package template
