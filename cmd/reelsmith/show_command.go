package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/api"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a single task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			tsk, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTask(cmd, tsk)
			return nil
		},
	}
}

func printTask(cmd *cobra.Command, tsk api.TaskView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %s\n", tsk.ID)
	fmt.Fprintf(out, "Status:  %s\n", tsk.Status)
	if tsk.ProgressStage != "" {
		fmt.Fprintf(out, "Stage:   %s\n", tsk.ProgressStage)
	}
	if tsk.SearchQuery != "" {
		fmt.Fprintf(out, "Query:   %s\n", tsk.SearchQuery)
	}
	if tsk.CreatedAt != "" {
		fmt.Fprintf(out, "Created: %s\n", tsk.CreatedAt)
	}
	if tsk.CompletedAt != "" {
		fmt.Fprintf(out, "Done:    %s\n", tsk.CompletedAt)
	}
	if tsk.OutputPath != "" {
		fmt.Fprintf(out, "Output:  %s\n", tsk.OutputPath)
	}
	if tsk.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:   [%s] %s\n", tsk.ErrorKind, tsk.ErrorMessage)
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <task-id>",
		Short: "Remove a finished task from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			tsk, err := client.RemoveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task %s (%s)\n", tsk.ID, tsk.Status)
			return nil
		},
	}
}
