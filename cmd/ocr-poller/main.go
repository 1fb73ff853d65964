// Command ocr-poller consumes delayed OCR poll ticks from the queue and resumes the
// waiting workflow once a job finishes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/queue"
	"github.com/Lllllllleong/documentexplorer/internal/services"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ocr-poller",
	Short: "Poll OCR jobs and report results to their workflows",
	Long: `Poll OCR jobs and report results to their workflows.

Reads the same environment as the ocr-starter function (PROJECT_ID,
FIRESTORE_COLLECTION, DOCUMENTAI_PROCESSOR_ID, OCR_OUTPUT_BUCKET,
QUEUE_ENDPOINT, OCR_POLL_DELAY) plus OCR_MAX_POLLS.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().Int("concurrency", 10, "number of poll ticks handled at once")
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("OCR poller exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoint, err := gcp.RequireEnv("QUEUE_ENDPOINT")
	if err != nil {
		return err
	}
	poller, err := services.NewOCRPoller(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := poller.Close(); err != nil {
			slog.Warn("Failed to close poller clients", "error", err)
		}
	}()

	config := poller.Config()
	if config.MaxPolls == 0 {
		slog.Warn("OCR_MAX_POLLS is 0; jobs are polled until the workflow times out.")
	}

	server, err := queue.NewServer(endpoint, concurrency)
	if err != nil {
		return err
	}
	slog.Info("OCR poller started.", "concurrency", concurrency, "pollDelay", config.PollDelay, "maxPolls", config.MaxPolls)
	return server.Run(ctx, queue.NewServeMux(poller))
}
