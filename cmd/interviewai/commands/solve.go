package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/interviewai/backend/pkg/cli"
	"github.com/interviewai/backend/pkg/interview"
)

var (
	solveRaw      bool
	solveLanguage string
	solveWidth    int
)

var solveCmd = &cobra.Command{
	Use:   "solve <image-file>",
	Short: "Solve a coding problem from a screenshot",
	Long: `Transcribe a screenshot of a coding problem and solve it.

The answer is rendered as a summary box followed by the intuition,
algorithm, implementation and complexity analysis sections. With --raw the
chunks are printed as the server would stream them, separator included.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if solveLanguage != "" {
			cfg.Vision.DefaultLanguage = solveLanguage
		}
		ctx := cmd.Context()
		p, err := cfg.Build(ctx)
		if err != nil {
			return err
		}

		start := time.Now()
		turn := p.VisionPipeline(cfg).Stream(ctx, interview.NewSession("", ""), base64.StdEncoding.EncodeToString(image))
		out := cmd.OutOrStdout()
		r := cli.NewRenderer(solveWidth)
		if solveRaw {
			for text, err := range turn.Deltas() {
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
			}
			fmt.Fprintln(out)
			return nil
		}

		var sb strings.Builder
		for text, err := range turn.Deltas() {
			if err != nil {
				return err
			}
			sb.WriteString(text)
		}
		summary, answer := interview.SplitDocument(sb.String())
		fmt.Fprintln(out, r.Solution(summary, answer))
		if IsVerbose() {
			fmt.Fprintln(cmd.ErrOrStderr(), r.Footer("solved", time.Since(start)))
		}
		return nil
	},
}

func init() {
	solveCmd.Flags().BoolVar(&solveRaw, "raw", false, "print the streamed chunks without rendering")
	solveCmd.Flags().StringVar(&solveLanguage, "language", "", "language to solve in when the screenshot names none")
	solveCmd.Flags().IntVar(&solveWidth, "width", 80, "render width")
	rootCmd.AddCommand(solveCmd)
}
