// Package panel defines the JSON command/event protocol spoken with the
// panel UI and the handler that dispatches commands to session operations.
package panel
