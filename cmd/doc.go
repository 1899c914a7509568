// Package cmd implements the command-line interface for meetsched.
//
// This package provides the following commands:
//   - serve: Start the HTTP booking API and metrics server
//   - mcp: Start the MCP server on stdio for AI assistants
//   - connect: Connect the owner's Google Calendar from the terminal
//   - disconnect: Remove the owner's stored Google credentials
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
