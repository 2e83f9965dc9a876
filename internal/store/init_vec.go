package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// init registers the sqlite-vec extension as an auto-loadable extension
// against the mattn/go-sqlite3 driver. This is process-wide, idempotent,
// global state and must run before any store connection is opened (design
// note: "Vector-extension registration is a one-shot process-wide
// initialisation").
func init() {
	vec.Auto()
}
