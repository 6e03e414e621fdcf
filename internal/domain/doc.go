// Package domain holds the shared error taxonomy for the service core.
// Entity types live in the sub-packages project and changerequest; this
// package only defines the sentinel errors and error carriers they share,
// so that every layer can classify failures with errors.Is without import
// cycles.
package domain
