/*
Package domain contains the core domain models for storyline.

It defines the vocabulary shared between the execution-context tracker, the
lifecycle orchestrator and the adapters: item identifiers, statuses, story
metadata, example tables, story frames and the request shapes handed to a
reporting client. This package is kept pure and free of I/O.

# Key Entities

  - ItemID: Opaque identifier returned by the reporting service. Empty means unset.
  - Meta: Ordered key/value tags attached by the test engine to a story or scenario.
  - ExampleTable: The data-driven example row currently being iterated.
  - StoryFrame: Reporting identifiers of one active (possibly nested) story.
  - LifecycleHooks: Observability callbacks fired by the orchestrator.
*/
package domain
