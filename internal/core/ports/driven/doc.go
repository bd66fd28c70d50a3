// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Decoder: Turns raw bytes into text, never failing
//   - Stripper: Removes ruby and editorial annotations from text
//   - ArchiveCodec: Reads and writes zip archives
//   - ResultStore: Holds artifacts until the user downloads them
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
