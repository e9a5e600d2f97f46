package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/taskview"
)

const shortIDLen = 8

func parseTimeframe(raw string) (models.Timeframe, error) {
	tf := models.Timeframe(strings.ToLower(raw))
	if !tf.Valid() {
		return "", fmt.Errorf("unknown timeframe %q (want daily, weekly, monthly or yearly)", raw)
	}
	return tf, nil
}

// loadView opens the session and fills a view from the server.
func (o *options) loadView(ctx context.Context) (*taskview.View, error) {
	a, err := o.open()
	if err != nil {
		return nil, err
	}

	v := taskview.New(a.client)
	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// resolveID accepts a full id or a unique prefix of one.
func resolveID(v *taskview.View, prefix string) (string, error) {
	var matches []string
	for _, tf := range models.Timeframes {
		for _, e := range v.Visible(tf) {
			if e.Task.ID == prefix {
				return prefix, nil
			}
			if strings.HasPrefix(e.Task.ID, prefix) {
				matches = append(matches, e.Task.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d tasks", prefix, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func printEntries(w io.Writer, timeframe models.Timeframe, entries []taskview.Entry) {
	fmt.Fprintf(w, "%s (%d)\n", timeframe, len(entries))
	for _, e := range entries {
		mark := " "
		if e.Task.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  %d. [%s] %s  %s\n", e.Task.Position, mark, shortID(e.Task.ID), e.Task.Text)
	}
}

func listCmd(opts *options) *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks by timeframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeframes := models.Timeframes
			if timeframe != "" {
				tf, err := parseTimeframe(timeframe)
				if err != nil {
					return err
				}
				timeframes = []models.Timeframe{tf}
			}

			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}

			for _, tf := range timeframes {
				printEntries(cmd.OutOrStdout(), tf, v.Visible(tf))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Only show one timeframe")
	return cmd
}

func addCmd(opts *options) *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Append a task to a timeframe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := parseTimeframe(timeframe)
			if err != nil {
				return err
			}

			a, err := opts.open()
			if err != nil {
				return err
			}

			task, err := taskview.New(a.client).Add(cmd.Context(), strings.Join(args, " "), tf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s at position %d\n", shortID(task.ID), task.Timeframe, task.Position)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", string(models.TimeframeDaily), "Timeframe")
	return cmd
}

func doneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}

			id, err := resolveID(v, args[0])
			if err != nil {
				return err
			}

			if err := v.Toggle(cmd.Context(), id); err != nil {
				return err
			}

			e, _ := v.Get(id)
			state := "open"
			if e.Task.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", shortID(id), state)
			return nil
		},
	}
}

func editCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}

			id, err := resolveID(v, args[0])
			if err != nil {
				return err
			}

			if _, err := v.Edit(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(id))
			return nil
		},
	}
}

func rmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}

			id, err := resolveID(v, args[0])
			if err != nil {
				return err
			}

			if err := v.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
			return nil
		},
	}
}

func moveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a task within its timeframe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}

			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}

			id, err := resolveID(v, args[0])
			if err != nil {
				return err
			}

			if err := v.MoveTo(cmd.Context(), id, index); err != nil {
				return err
			}

			e, _ := v.Get(id)
			printEntries(cmd.OutOrStdout(), e.Task.Timeframe, v.Visible(e.Task.Timeframe))
			return nil
		},
	}
}

func suggestCmd(opts *options) *cobra.Command {
	var (
		timeframe string
		add       bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Ask the AI to break a note into tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := parseTimeframe(timeframe)
			if err != nil {
				return err
			}

			a, err := opts.open()
			if err != nil {
				return err
			}

			suggestions, err := a.client.SuggestTasks(cmd.Context(), strings.Join(args, " "), tf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No tasks suggested")
				return nil
			}

			v := taskview.New(a.client)
			for _, s := range suggestions {
				if !add {
					fmt.Fprintf(out, "- %s\n", s.Text)
					continue
				}
				task, err := v.Add(cmd.Context(), s.Text, tf)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "+ %s  %s\n", shortID(task.ID), task.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", string(models.TimeframeDaily), "Timeframe")
	cmd.Flags().BoolVar(&add, "add", false, "Create the suggested tasks")
	return cmd
}
