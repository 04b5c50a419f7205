package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tiktakpaf-backend/internal"
	"github.com/scythe504/tiktakpaf-backend/internal/config"
	"github.com/scythe504/tiktakpaf-backend/internal/database"
	"github.com/scythe504/tiktakpaf-backend/internal/redisstore"
	"github.com/scythe504/tiktakpaf-backend/internal/server"
	"github.com/scythe504/tiktakpaf-backend/internal/store"
	"github.com/scythe504/tiktakpaf-backend/internal/utils"
)

type stores struct {
	rooms     store.RoomStore
	users     store.UserStore
	questions store.QuestionStore
	health    server.HealthFunc
	close     func()
}

// openStores builds the stores for the configured driver. The redis driver
// keeps only rooms and users remotely; its question bank is the CSV held in
// memory.
func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	bank, err := loadQuestions(cfg.QuestionsCSV)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		if len(bank) > 0 {
			n, err := db.Questions().Insert(ctx, bank)
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("import questions: %w", err)
			}
			log.Info().Int("questions", n).Msg("[openStores] question bank imported")
		}
		return &stores{
			rooms:     db.Rooms(),
			users:     db.Users(),
			questions: db.Questions(),
			health:    db.Ping,
			close:     db.Close,
		}, nil

	case config.DriverRedis:
		rs, err := redisstore.New(ctx, cfg.RedisURL, cfg.RoomTTL)
		if err != nil {
			return nil, err
		}
		mem := store.NewMemory(bank...)
		return &stores{
			rooms:     rs.Rooms(),
			users:     rs.Users(),
			questions: mem.Questions(),
			health:    rs.Ping,
			close: func() {
				if err := rs.Close(); err != nil {
					log.Warn().Err(err).Msg("[openStores] closing redis failed")
				}
			},
		}, nil

	default:
		mem := store.NewMemory(bank...)
		return &stores{
			rooms:     mem,
			users:     mem.Users(),
			questions: mem.Questions(),
			close:     func() {},
		}, nil
	}
}

func loadQuestions(path string) ([]internal.Question, error) {
	if path == "" {
		log.Warn().Msg("[loadQuestions] QUESTIONS_CSV not set, starting with an empty question bank")
		return nil, nil
	}
	bank, err := utils.ReadQuestionsCsvFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	log.Info().Str("path", path).Int("questions", len(bank)).Msg("[loadQuestions] question bank loaded")
	return bank, nil
}
