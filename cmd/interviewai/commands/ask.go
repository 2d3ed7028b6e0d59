package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/interviewai/backend/pkg/cli"
	"github.com/interviewai/backend/pkg/interview"
)

var askInput struct {
	company    string
	role       string
	resumeFile string
	jdFile     string
	extra      string
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Stream one answer to the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		if strings.TrimSpace(question) == "" {
			return interview.ErrEmptyInput
		}
		resume, err := readOptional(askInput.resumeFile)
		if err != nil {
			return err
		}
		jd, err := readOptional(askInput.jdFile)
		if err != nil {
			return err
		}
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		p, err := cfg.Build(ctx)
		if err != nil {
			return err
		}

		sess, err := p.Preparer().NewSession(ctx, interview.SessionInput{
			Company:           askInput.company,
			Role:              askInput.role,
			ResumeText:        resume,
			JDText:            jd,
			ExtraInstructions: askInput.extra,
		})
		if err != nil {
			return err
		}

		start := time.Now()
		out := cmd.OutOrStdout()
		for text, err := range p.Answerer(cfg).Stream(ctx, sess, question).Deltas() {
			if err != nil {
				fmt.Fprintln(out)
				return err
			}
			fmt.Fprint(out, text)
		}
		fmt.Fprintln(out)
		if IsVerbose() {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.NewRenderer(0).Footer("answered", time.Since(start)))
		}
		return nil
	},
}

// readOptional returns the contents of path, or "" when path is empty.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func init() {
	f := askCmd.Flags()
	f.StringVar(&askInput.company, "company", "", "company the candidate interviews with")
	f.StringVar(&askInput.role, "role", "", "role the candidate applies for")
	f.StringVar(&askInput.resumeFile, "resume", "", "resume text file")
	f.StringVar(&askInput.jdFile, "jd", "", "job description text file")
	f.StringVar(&askInput.extra, "instructions", "", "extra instructions for the answer style")
	rootCmd.AddCommand(askCmd)
}
