//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// Without the ORT tag the pure-Go backend runs the model; slower, but
// it needs no shared libraries.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
