package main

import (
	"context"
	"errors"
	"flag"

	"github.com/joho/godotenv"

	"github.com/oksasatya/blogilista/config"
	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/internal/container"
	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/pkg/helpers"
)

// seed loads the fixture used by the API tests: two ownerless blogs and user1.
func main() {
	password := flag.String("password", "salasana", "password for user1")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	cfg.EventsEnabled = false
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	existing, err := c.BlogRepo.List(ctx)
	if err != nil {
		logger.Fatalf("list blogs: %v", err)
	}
	if len(existing) == 0 {
		for i, title := range []string{"blogi1", "blogi2"} {
			b := &entity.Blog{Title: title, Author: "kirjoittaja", URL: "url", Likes: i + 1}
			if err := c.BlogRepo.Create(ctx, b); err != nil {
				logger.Fatalf("seed blog: %v", err)
			}
			logger.WithField("blog_id", b.ID).Info("seeded blog")
		}
	} else {
		logger.WithField("count", len(existing)).Info("blogs present, skipping")
	}

	u, err := c.Users.Register(ctx, application.RegisterInput{Username: "user1", Password: *password, Name: "Käyttäjä"})
	switch {
	case errors.Is(err, application.ErrUsernameTaken):
		logger.Info("user1 present, skipping")
	case err != nil:
		logger.Fatalf("seed user: %v", err)
	default:
		logger.WithField("user_id", u.ID).Info("seeded user1")
	}
}
