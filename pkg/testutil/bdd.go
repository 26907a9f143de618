// Package testutil holds shared test helpers.
package testutil

import "testing"

// Given, When, and Then keep scenario tests readable without pulling in a
// BDD framework. Each wraps t.Run with a prefixed description.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
