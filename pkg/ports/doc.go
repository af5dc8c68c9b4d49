/*
Package ports defines the driven ports (interfaces) of the Tendril controller.

These interfaces decouple the rule engine from hardware, persistence and the
client application, so the controller runs the same against real peripherals,
simulated ones, files, Redis or SQLite.

# Key Interfaces

  - GPIO, PWMChannel, ADC: peripheral drivers used by hardware-backed components.
  - MediaBackend: the playback collaborator behind the shared video and audio players.
  - DefinitionStore: persists and loads the full component/event definition.
  - UpdateSource: supplies incremental update documents from the client.
  - SnapshotSink: receives component/event snapshots and the live display feed.
  - DistributedLocker: guarantees a single controller owns the hardware.
*/
package ports
