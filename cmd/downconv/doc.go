// Package main hosts the downconv CLI entrypoint and command graph.
//
// The root command converts one release folder: `downconv <path>` validates
// the folder, copies the files that need no re-encoding, and runs SoX over the
// high-resolution tracks. Subcommands scaffold configuration, verify the
// environment, and list previous runs from the history database.
//
// Keep this package lean: behaviour belongs in internal/conversion and its
// collaborators, and commands here only resolve configuration and render
// results.
package main
