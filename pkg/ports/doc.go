/*
Package ports defines the driven ports (interfaces) of the storyline reporter.

These interfaces decouple the orchestrator from the reporting service and from
any durable bookkeeping, so the same lifecycle logic runs against a real
service client, the in-memory backend, or a test double.

# Key Interfaces

  - ReportingClient: Starts and finishes launches and test items on the reporting service.
  - ItemJournal: Durably mirrors the open-items stack so a crashed run can be swept later.
*/
package ports
