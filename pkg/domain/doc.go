/*
Package domain contains the core domain models of the onboarding wizards.

It defines the step specifications, the per-session wizard state and the
tagged outcomes produced by step handlers. This package is kept pure and free
of external dependencies like I/O or persistence.

# Key Entities

  - Step: one screen of a wizard, owning a fixed subset of fields, their rules and an optional handler.
  - Rule: declarative validation for a single field (required, pattern, cross-field check).
  - State: the runtime snapshot of a wizard session (position, values, errors, touched set).
  - Outcome: the result of a step handler, either advance or reject(field, message).
  - View: what the field rendering surface needs to draw the active step.
*/
package domain
