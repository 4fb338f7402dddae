// Package wizards declares the Signup and ForgotPassword step specifications.
//
// Steps are plain data bound to a ports.Gateway: the handlers close over the
// gateway and translate its answers into domain outcomes. The runtime engine
// knows nothing about signup or password resets.
package wizards
