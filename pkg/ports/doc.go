/*
Package ports defines the driven ports (interfaces) for the onboarding wizards.

These interfaces decouple the wizard runtime from external implementations,
allowing the same wizards to run against in-memory fakes, Redis or a real
identity backend.

# Key Interfaces

  - Gateway: The backend the step handlers talk to (email lookup, OTP, finalization).
  - StateStore: Responsible for persisting and loading wizard session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - CodeSender: Delivers one-time codes produced by the reference gateways.
*/
package ports
