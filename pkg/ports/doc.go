/*
Package ports defines the driven ports (interfaces) of the sequencer service.

These interfaces decouple the HTTP and CLI surfaces from external implementations,
allowing the same code to run against in-memory or Redis backends.

# Key Interfaces

  - PreferenceStore: persists the locale chosen or detected for a client.
*/
package ports
