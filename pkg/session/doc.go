/*
Package session implements wizard session management and persistence orchestration.

A Manager owns one runtime engine per wizard kind and drives sessions stored in a
ports.StateStore. Every state mutation runs under a per-session lock (local, plus
an optional distributed lock) so several HTTP requests or replicas can share a
session safely.

Advancing a step with a gateway handler is split in two locked phases: the step is
marked as submitting and saved, the handler runs without any lock held, and the
outcome is applied to whatever state is current at that point. Concurrent advance
requests observe the submitting flag and are ignored instead of calling the
gateway twice.
*/
package session
