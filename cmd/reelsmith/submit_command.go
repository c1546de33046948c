package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptFile  string
		query       string
		voiceID     string
		callbackURL string
		noCaptions  bool
		wordsPerCue int
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "submit [script text]",
		Short: "Submit a script for video generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := resolveScript(args, scriptFile)
			if err != nil {
				return err
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			req := api.SubmitRequest{
				ScriptText:  script,
				SearchQuery: query,
				VoiceID:     voiceID,
				CallbackURL: callbackURL,
				WordsPerCue: wordsPerCue,
			}
			if noCaptions {
				captions := false
				req.Captions = &captions
			}

			tsk, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %s accepted\n", tsk.ID)

			if !wait {
				return nil
			}
			return waitForTask(cmd, client, tsk.ID)
		},
	}

	cmd.Flags().StringVarP(&scriptFile, "file", "f", "", "Read the script from a file instead of the argument")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Stock footage search query")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Narration voice ID override")
	cmd.Flags().StringVar(&callbackURL, "callback", "", "URL to notify when the task finishes")
	cmd.Flags().BoolVar(&noCaptions, "no-captions", false, "Skip caption burn-in")
	cmd.Flags().IntVar(&wordsPerCue, "words-per-cue", 0, "Words per caption cue override")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until the task reaches a terminal status")
	return cmd
}

func resolveScript(args []string, scriptFile string) (string, error) {
	if scriptFile != "" {
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return "", fmt.Errorf("read script file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	return "", fmt.Errorf("script text is required (pass it as an argument or via --file)")
}

func waitForTask(cmd *cobra.Command, client *api.Client, id string) error {
	out := cmd.OutOrStdout()
	lastStage := ""
	for {
		tsk, err := client.GetTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		if tsk.ProgressStage != lastStage && tsk.ProgressStage != "" {
			fmt.Fprintf(out, "  stage: %s\n", tsk.ProgressStage)
			lastStage = tsk.ProgressStage
		}
		switch tsk.Status {
		case "completed":
			fmt.Fprintf(out, "Task %s completed: %s\n", id, tsk.OutputPath)
			return nil
		case "failed":
			return fmt.Errorf("task %s failed (%s): %s", id, tsk.ErrorKind, tsk.ErrorMessage)
		}
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(time.Second):
		}
	}
}
