// Package sanitizer normalizes free text supplied with booking requests.
//
// All functions are idempotent: applying them more than once yields the same result.
// They never fail; input that normalizes to nothing becomes the empty string, which
// the validators then reject where a value is required.
package sanitizer
