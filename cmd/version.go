package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the meetsched version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("meetsched version %s\n", version)
		},
	}
}
