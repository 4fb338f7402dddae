// Package validation evaluates field rules for the onboarding wizards.
//
// Every function here is pure and synchronous: given identical field values the
// result is always identical.
package validation
