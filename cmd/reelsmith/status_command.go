package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"reelsmith/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the current task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := client.ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon: running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Slots:  %d/%d in use\n", status.ActiveTasks, status.MaxTasks)
			fmt.Fprintf(out, "Output: %s\n\n", status.OutputDir)

			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}
			fmt.Fprintln(out, renderTaskTable(tasks))
			return nil
		},
	}
}

func renderTaskTable(tasks []api.TaskView) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Status", "Stage", "Age", "Detail"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	for _, tsk := range tasks {
		tw.AppendRow(table.Row{
			shortID(tsk.ID),
			tsk.Status,
			tsk.ProgressStage,
			taskAge(tsk),
			taskDetail(tsk),
		})
	}
	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func taskAge(tsk api.TaskView) string {
	created := api.ParseTime(tsk.CreatedAt)
	if created.IsZero() {
		return ""
	}
	return time.Since(created).Round(time.Second).String()
}

func taskDetail(tsk api.TaskView) string {
	switch tsk.Status {
	case "completed":
		return tsk.OutputPath
	case "failed":
		if tsk.ErrorKind != "" {
			return fmt.Sprintf("%s: %s", tsk.ErrorKind, tsk.ErrorMessage)
		}
		return tsk.ErrorMessage
	default:
		return tsk.SearchQuery
	}
}
