package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/tools/booking_tools"
)

func newMCPCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol (MCP) server on standard input/output,
exposing the scheduler tools for AI assistants.

Tools:
  scheduler_list_dates  list bookable dates for a month
  scheduler_list_slots  list bookable slots for a date
  scheduler_check_slot  advisory availability check for one slot
  scheduler_book        book a slot (revalidated before committing)

The server uses the same environment configuration as serve. The owner's
calendar must already be connected; run the connect command or the HTTP
/auth/setup flow first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (on stderr)")

	return cmd
}

func runMCP(debugMode bool) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol; keep logging quiet unless debugging.
	sched, err := newScheduler(shutdownCtx, debugMode, !debugMode)
	if err != nil {
		return err
	}
	defer sched.shutdown(context.Background())

	mcpSrv := mcpserver.NewMCPServer("meetsched", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := booking_tools.RegisterBookingTools(mcpSrv, sched.engine); err != nil {
		return fmt.Errorf("failed to register scheduler tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
