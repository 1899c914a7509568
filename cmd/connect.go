package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect the owner's Google Calendar from the terminal",
		Long: `Connect the owner's Google Calendar without running the HTTP server.

Prints the Google consent URL, then reads the authorization code from
stdin and persists the resulting credential set. The code is shown on
the redirect URL after completing the consent flow in a browser.

For the browser-only flow, run serve and visit /auth/setup instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd.Context())
		},
	}

	return cmd
}

func runConnect(ctx context.Context) error {
	sched, err := newScheduler(ctx, false, false)
	if err != nil {
		return err
	}
	defer sched.shutdown(context.Background())

	if sched.auth.Connected() {
		fmt.Println("Calendar is already connected. Run disconnect first to reconnect with a different account.")
		return nil
	}

	fmt.Println("Open this URL in a browser and approve access:")
	fmt.Println()
	fmt.Println("  " + sched.auth.AuthURL())
	fmt.Println()
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := sched.auth.Exchange(ctx, code); err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	fmt.Println("Calendar connected.")
	return nil
}

func newDisconnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Remove the owner's stored Google credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisconnect(cmd.Context())
		},
	}

	return cmd
}

func runDisconnect(ctx context.Context) error {
	sched, err := newScheduler(ctx, false, false)
	if err != nil {
		return err
	}
	defer sched.shutdown(context.Background())

	if !sched.auth.Connected() {
		fmt.Println("Calendar is not connected.")
		return nil
	}

	if err := sched.auth.Disconnect(); err != nil {
		return fmt.Errorf("failed to remove stored credentials: %w", err)
	}

	fmt.Println("Calendar disconnected. The app's access can also be revoked at https://myaccount.google.com/permissions.")
	return nil
}
