// Package cli implements the interactive pwvault shell: it unlocks the vault
// once at startup and then dispatches REPL commands to the services.
package cli
