package commands

import (
	"cmp"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jagtap-suraj/sensai/pkg/cli"
	"github.com/jagtap-suraj/sensai/pkg/records"
)

// setupRequest is the -f file format of 'sensai setup'. Flags override
// fields set in the file.
type setupRequest struct {
	Name       string `json:"name"        yaml:"name"`
	Role       string `json:"role"        yaml:"role"`
	Level      string `json:"level"       yaml:"level"`
	Type       string `json:"type"        yaml:"type"`
	Resume     string `json:"resume"      yaml:"resume"`
	ResumeText string `json:"resume_text" yaml:"resume_text"`
}

var (
	setupFile string
	setupFlag setupRequest
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a new interview",
	Long: `Create a new interview from a role, a job level and an optional resume.

Resumes in .txt or .md format are read as is. PDF and Word resumes are
converted to text with Gemini and need a Gemini API key.

Examples:
  sensai setup --role "Backend Engineer" --level senior --type technical
  sensai setup --name Ada --role "Data Scientist" --resume cv.pdf
  sensai setup -f interview.yaml`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	f := setupCmd.Flags()
	f.StringVarP(&setupFile, "file", "f", "", "request file (yaml or json)")
	f.StringVar(&setupFlag.Name, "name", "", "candidate name")
	f.StringVar(&setupFlag.Role, "role", "", "target role")
	f.StringVar(&setupFlag.Level, "level", "", "job level: entry, mid, senior or lead")
	f.StringVar(&setupFlag.Type, "type", "", "interview type: behavioral, technical or mixed")
	f.StringVar(&setupFlag.Resume, "resume", "", "resume file (.txt, .md, .pdf, .doc or .docx)")
	addOutputFlags(setupCmd)
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	var req setupRequest
	if setupFile != "" {
		if err := cli.LoadRequest(setupFile, &req); err != nil {
			return err
		}
		// Resume paths in a request file are relative to the file.
		if req.Resume != "" && !filepath.IsAbs(req.Resume) {
			req.Resume = filepath.Join(filepath.Dir(setupFile), req.Resume)
		}
	}
	req.Name = cmp.Or(setupFlag.Name, req.Name)
	req.Role = cmp.Or(setupFlag.Role, req.Role)
	req.Level = cmp.Or(setupFlag.Level, req.Level)
	req.Type = cmp.Or(setupFlag.Type, req.Type)
	req.Resume = cmp.Or(setupFlag.Resume, req.Resume)

	level, err := records.ParseJobLevel(req.Level)
	if err != nil {
		return err
	}
	typ, err := records.ParseType(req.Type)
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	resume := req.ResumeText
	if req.Resume != "" {
		client, err := e.geminiClient(ctx, true)
		if err != nil {
			return err
		}
		x := records.NewResumeExtractor(client, e.gemini.ResumeModel)
		if resume, err = x.ExtractFile(ctx, req.Resume); err != nil {
			return err
		}
	}

	svc, closeStore, err := e.records(ctx, false)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := svc.Create(ctx, records.CreateRequest{
		UserName:   req.Name,
		TargetRole: req.Role,
		JobLevel:   level,
		Type:       typ,
		ResumeText: resume,
	})
	if err != nil {
		return fmt.Errorf("create interview: %w", err)
	}
	return outputResult(cmd, rec)
}
