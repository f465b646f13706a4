// Package shared holds cross-cutting helpers that belong to no single
// domain package.
//
// The testutil subpackage provides fixture writers and quiet loggers used
// by tests across the codebase. Nothing under shared may import other
// internal packages; dependencies point inward only.
package shared
