package main

import (
	"context"
	"log"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/canvaswizards/canvas-moderator/internal/canvas"
	"github.com/canvaswizards/canvas-moderator/internal/config"
	"github.com/canvaswizards/canvas-moderator/internal/moderation"
	"github.com/canvaswizards/canvas-moderator/internal/report"
	"github.com/canvaswizards/canvas-moderator/internal/scrape"
	"github.com/canvaswizards/canvas-moderator/internal/stats"
	"github.com/canvaswizards/canvas-moderator/internal/summary"
)

func main() {
	flags := pflag.NewFlagSet("moderator", pflag.ExitOnError)
	flags.String("base.url", "", "Canvas base URL")
	flags.Int64("course.id", 0, "course ID")
	flags.Int64("assignment.id", 0, "assignment ID")
	flags.String("output.dir", ".", "directory the report tree is written under")
	flags.Bool("annotate", false, "scrape submission annotations (requires a session cookie)")
	flags.Bool("anonymise", false, "anonymise graders before analysis")
	flags.Bool("summary", false, "generate a moderation summary document")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := context.Background()

	client, err := canvas.NewClient(canvas.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.HTTPTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create canvas client: %v", err)
	}

	var fetcher report.AnnotationFetcher
	if cfg.Annotate {
		session, err := scrape.NewSession(cfg.SessionCookie, cfg.HTTPTimeout, logger)
		if err != nil {
			log.Fatalf("failed to create scraping session: %v", err)
		}
		fetcher = session
	}

	store := report.NewStore(logger)
	builder := report.NewBuilder(client, fetcher, store, logger)

	path, _, err := builder.Build(ctx, cfg.CourseID, cfg.AssignmentID, cfg.OutputDir)
	if err != nil {
		log.Fatalf("failed to build report: %v", err)
	}

	detector := stats.NewDetector(logger)
	flagger := moderation.NewFlagger(store, detector, logger)

	outcome, err := flagger.Moderate(ctx, path, moderation.Options{Anonymize: cfg.Anonymize})
	if err != nil {
		log.Fatalf("failed to moderate report: %v", err)
	}

	renderer := summary.NewRenderer(logger)
	if err := renderer.WritePlots(outcome); err != nil {
		log.Fatalf("failed to write plots: %v", err)
	}

	if cfg.Summary {
		if _, err := renderer.WriteDocument(outcome); err != nil {
			log.Fatalf("failed to write summary: %v", err)
		}
	}

	logger.Info().Str("report", path).Msg("moderation complete")
}
