// Package clock provides a tiny time abstraction.
//
// Code that derives one-time codes or timestamps depends on Clocker instead of
// calling time.Now directly, so tests can pin the current time with Fixed.
package clock
