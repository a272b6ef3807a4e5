package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/ingestion"
	"github.com/killallgit/persona-api/internal/services/jobs"
	"github.com/killallgit/persona-api/pkg/config"
)

const progressPollInterval = 250 * time.Millisecond

// ingestCmd runs one ingestion in the foreground
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a channel and wait for the result",
	Long: `Run one channel ingestion in the foreground.

The job goes through the same checks as POST /api/v1/ingestions: entitlement,
the per-channel lock and eligibility. Progress is shown while videos are
processed.

Example:
  persona-api ingest --channel UC123 --team team-1 --creator creator-1
  persona-api ingest --channel @handle --team team-1 --creator creator-1 --skip-entitlement`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("channel", "", "channel ID or handle to ingest")
	ingestCmd.Flags().String("team", "", "team that owns the creator")
	ingestCmd.Flags().String("creator", "", "creator ID the chunks are stored under")
	ingestCmd.Flags().String("description", "", "custom creator description")
	ingestCmd.Flags().String("background", "", "background text about the creator")
	ingestCmd.Flags().Bool("skip-entitlement", false, "do not check the team's entitlement")
	ingestCmd.Flags().Bool("no-progress", false, "disable the progress bar")
	_ = ingestCmd.MarkFlagRequired("channel")
	_ = ingestCmd.MarkFlagRequired("team")
	_ = ingestCmd.MarkFlagRequired("creator")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	req := ingestion.Request{}
	req.ChannelID, _ = flags.GetString("channel")
	req.TeamID, _ = flags.GetString("team")
	req.CreatorID, _ = flags.GetString("creator")
	req.CustomDescription, _ = flags.GetString("description")
	req.BackgroundText, _ = flags.GetString("background")
	skipEntitlement, _ := flags.GetBool("skip-entitlement")
	noProgress, _ := flags.GetBool("no-progress")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{skipEntitlement: skipEntitlement})
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.orchestrator.Start(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Job %s queued for channel %s\n", job.ID, req.ChannelID)

	stopProgress := watchProgress(ctx, a.jobs, job.ID, !noProgress && term.IsTerminal(int(os.Stderr.Fd())))
	runErr := a.orchestrator.Run(ctx, job.ID, "cli")
	stopProgress()

	if errors.Is(runErr, jobs.ErrInvalidTransition) {
		return fmt.Errorf("job %s was claimed by a server worker; follow it at /api/v1/jobs/%s", job.ID, job.ID)
	}

	final, err := a.jobs.GetJob(context.WithoutCancel(ctx), job.ID)
	if err != nil {
		if runErr != nil {
			return runErr
		}
		return err
	}
	printJobSummary(cmd.OutOrStdout(), final)
	return runErr
}

// watchProgress polls the job and mirrors its progress on a bar. The
// returned func stops polling and finishes the bar.
func watchProgress(ctx context.Context, service jobs.Service, jobID string, enabled bool) func() {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressPollInterval)
		defer ticker.Stop()

		total := -1
		for {
			select {
			case <-ticker.C:
				job, err := service.GetJob(ctx, jobID)
				if err != nil {
					continue
				}
				if job.Progress.Total > 0 && job.Progress.Total != total {
					total = job.Progress.Total
					bar.ChangeMax(total)
				}
				_ = bar.Set(job.Progress.Current)
			case <-done:
				_ = bar.Finish()
				return
			case <-ctx.Done():
				_ = bar.Finish()
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func printJobSummary(w io.Writer, job *models.Job) {
	fmt.Fprintf(w, "Job %s %s\n", job.ID, job.Status)
	if r := job.Result; r != nil {
		fmt.Fprintf(w, "  videos:         %d processed, %d failed, %d eligible\n", r.ProcessedVideos, r.FailedVideos, r.TotalVideos)
		fmt.Fprintf(w, "  chunks:         %d total (%d from channel context)\n", r.TotalChunks, r.ContextChunks)
		fmt.Fprintf(w, "  can reprocess:  %t\n", r.CanReprocess)
	}
	if job.Error != "" {
		fmt.Fprintf(w, "  error:          %s\n", job.Error)
		if job.ErrorType != "" {
			fmt.Fprintf(w, "  error type:     %s (%s)\n", job.ErrorType, job.ErrorCode)
		}
		if job.ErrorDetails != "" {
			fmt.Fprintf(w, "  details:        %s\n", job.ErrorDetails)
		}
	}
}
