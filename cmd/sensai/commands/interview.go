package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jagtap-suraj/sensai/pkg/cli"
	"github.com/jagtap-suraj/sensai/pkg/records"
	"github.com/jagtap-suraj/sensai/pkg/transcript"
)

var interviewCmd = &cobra.Command{
	Use:     "interview",
	Aliases: []string{"iv"},
	Short:   "Manage and run interviews",
	Long: `Manage and run interviews.

Examples:
  sensai interview list -o table
  sensai interview show <id>
  sensai interview run <id>
  sensai interview delete <id>`,
}

var interviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviews, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		svc, closeStore, err := e.records(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer closeStore()

		recs, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		return outputResult(cmd, interviewTable(recs))
	},
}

// showResult is an interview with its archived transcript, if any.
type showResult struct {
	*records.Interview `yaml:",inline"`
	Transcript         []transcript.Entry `json:"transcript,omitempty" yaml:"transcript,omitempty"`
}

var interviewShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an interview and its feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		svc, closeStore, err := e.records(ctx, false)
		if err != nil {
			return err
		}
		defer closeStore()

		rec, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		res := showResult{Interview: rec}

		arch, err := e.archiver()
		if err != nil {
			return err
		}
		if arch != nil {
			saved, err := arch.Load(ctx, rec.ID)
			switch {
			case err == nil:
				res.Transcript = saved.Entries
			case errors.Is(err, os.ErrNotExist):
			default:
				slog.Warn("load archived transcript", "id", rec.ID, "error", err)
			}
		}
		return outputResult(cmd, res)
	},
}

var interviewDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an interview and its archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		svc, closeStore, err := e.records(ctx, false)
		if err != nil {
			return err
		}
		defer closeStore()

		if _, err := svc.Get(ctx, args[0]); err != nil {
			return err
		}
		if err := svc.Delete(ctx, args[0]); err != nil {
			return err
		}
		arch, err := e.archiver()
		if err != nil {
			return err
		}
		if arch != nil {
			if err := arch.Delete(ctx, args[0]); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Interview %q deleted\n", args[0])
		return nil
	},
}

func init() {
	addOutputFlags(interviewListCmd)
	addOutputFlags(interviewShowCmd)

	interviewCmd.AddCommand(interviewListCmd)
	interviewCmd.AddCommand(interviewShowCmd)
	interviewCmd.AddCommand(interviewDeleteCmd)
	rootCmd.AddCommand(interviewCmd)
}

type interviewTable []*records.Interview

func (t interviewTable) Header() []string {
	return []string{"ID", "NAME", "ROLE", "LEVEL", "TYPE", "STATUS", "UPDATED"}
}

func (t interviewTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{
			r.ID,
			cli.Truncate(r.UserName, 20),
			cli.Truncate(r.TargetRole, 30),
			string(r.JobLevel),
			string(r.Type),
			string(r.Status),
			cli.FormatTime(r.UpdatedAt),
		}
	}
	return rows
}
