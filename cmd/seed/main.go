// Command seed imports a question bank CSV into PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal/config"
	"github.com/scythe504/tiktakpaf-backend/internal/database"
	"github.com/scythe504/tiktakpaf-backend/internal/logger"
	"github.com/scythe504/tiktakpaf-backend/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[seed] invalid configuration")
	}
	logger.Setup(cfg.LogLevel, true)

	var (
		csvPath = flag.String("csv", cfg.QuestionsCSV, "question bank CSV (id,question,answer,difficulty,gameMode)")
		dbURL   = flag.String("db", cfg.DatabaseURL, "PostgreSQL connection string")
	)
	flag.Parse()

	if *csvPath == "" || *dbURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	questions, err := utils.ReadQuestionsCsvFile(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *csvPath).Msg("[seed] failed to read questions")
	}

	db, err := database.New(ctx, *dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("[seed] failed to connect")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("[seed] failed to migrate")
	}

	n, err := db.Questions().Insert(ctx, questions)
	if err != nil {
		log.Fatal().Err(err).Int("written", n).Msg("[seed] import failed")
	}
	log.Info().Int("questions", n).Str("path", *csvPath).Msg("[seed] question bank imported")
}
