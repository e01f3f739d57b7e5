package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dali",
		Short: "HTTP image transformation proxy",
		Long:  "dali fetches an image and its watermarks, resizes, rotates and composites them, and returns the encoded result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(
		NewVersionCmd(gitsha),
		NewServeCmd(ctx),
	)
	return cmd
}

func NewVersionCmd(gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
}
