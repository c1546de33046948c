// Command reelsmith is the CLI and daemon entrypoint. `reelsmith serve`
// runs the video generation service; the remaining subcommands talk to
// a running daemon over its HTTP API.
package main
