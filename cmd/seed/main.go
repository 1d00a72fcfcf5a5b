package main

import (
	"context"
	"errors"
	"time"

	"streamgate/internal/config"
	"streamgate/internal/logging"
	"streamgate/internal/model"
	"streamgate/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testCode is the demo PIN used by the smoke tests
const testCode = "TEST1234"

func main() {
	cfg := config.Load()
	log := logging.NewLogger("streamgate-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureAccessCodeIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	now := time.Now().UTC()
	codes := repository.NewAccessCodeRepo(db)
	_, err = codes.Create(ctx, &model.AccessCode{
		Code:       testCode,
		OwnerName:  "Demo Subscriber",
		CreatedAt:  now,
		DaysValid:  365,
		ExpiryDate: model.ExpiryFrom(now, 365),
		IsActive:   true,
		CreatedBy:  "seed",
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		log.WithField("code", testCode).Info("demo PIN already present")
	case err != nil:
		log.WithError(err).Fatal("failed to insert demo PIN")
	default:
		log.WithField("code", testCode).Info("created demo PIN")
	}

	movies := repository.NewMovieRepo(db)
	if n, err := movies.Count(ctx); err != nil {
		log.WithError(err).Fatal("failed to count movies")
	} else if n == 0 {
		for _, m := range demoMovies() {
			if _, err := movies.Create(ctx, m); err != nil {
				log.WithError(err).Fatal("failed to insert movie")
			}
		}
		log.Info("seeded movies")
	}

	shows := repository.NewShowRepo(db)
	for _, s := range demoShows() {
		n, err := shows.Count(ctx, s.Kind)
		if err != nil {
			log.WithError(err).Fatal("failed to count shows")
		}
		if n > 0 {
			continue
		}
		if _, err := shows.Create(ctx, s); err != nil {
			log.WithError(err).Fatal("failed to insert show")
		}
	}

	channels := repository.NewLiveChannelRepo(db)
	if n, err := channels.Count(ctx); err == nil && n == 0 {
		_, err = channels.Create(ctx, &model.LiveChannel{
			Name:      "Streamgate News",
			Category:  "news",
			StreamURL: "https://streams.example.com/news/index.m3u8",
		})
		if err != nil {
			log.WithError(err).Fatal("failed to insert channel")
		}
	}

	backgrounds := repository.NewBackgroundRepo(db)
	if list, err := backgrounds.List(ctx, false); err == nil && len(list) == 0 {
		_, err = backgrounds.Create(ctx, &model.BackgroundImage{
			URL:    "https://images.example.com/login/aurora.jpg",
			Alt:    "Aurora over the mountains",
			Order:  1,
			Active: true,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to insert background")
		}
	}

	settings := repository.NewSettingsRepo(db)
	if msg, err := settings.GetWelcome(ctx); err == nil && msg == nil {
		err = settings.SetWelcome(ctx, &model.WelcomeMessage{Message: "Welcome to Streamgate!", UpdatedAt: now})
		if err != nil {
			log.WithError(err).Fatal("failed to set welcome message")
		}
	}

	log.Info("seed complete")
}

func demoMovies() []*model.Movie {
	return []*model.Movie{
		{
			Title:       "Space Drift",
			ImageURL:    "https://images.example.com/movies/space-drift.jpg",
			VideoURL:    "https://videos.example.com/movies/space-drift.mp4",
			Description: "A salvage crew finds a derelict that should not exist.",
			Year:        "2023",
			Rating:      "PG-13",
			Genre:       "Sci-Fi",
		},
		{
			Title:       "Harbor Lights",
			ImageURL:    "https://images.example.com/movies/harbor-lights.jpg",
			VideoURL:    "https://videos.example.com/movies/harbor-lights.mp4",
			Description: "Two rival fishermen on the last night of the season.",
			Year:        "2021",
			Rating:      "PG",
			Genre:       "Drama",
		},
	}
}

func demoShows() []*model.Show {
	return []*model.Show{
		{
			Kind:     model.ShowSeries,
			Title:    "Night Shift",
			ImageURL: "https://images.example.com/series/night-shift.jpg",
			Year:     "2022",
			Genre:    "Drama",
			Seasons: []model.Season{{
				ID:     "s1",
				Number: 1,
				Episodes: []model.Episode{
					{ID: "s1e1", Number: 1, Title: "Pilot", VideoURL: "https://videos.example.com/series/night-shift/s1e1.mp4"},
				},
			}},
		},
		{
			Kind:     model.ShowAnime,
			Title:    "Paper Blades",
			ImageURL: "https://images.example.com/anime/paper-blades.jpg",
			Year:     "2024",
			Genre:    "Action",
			Seasons: []model.Season{{
				ID:     "s1",
				Number: 1,
				Episodes: []model.Episode{
					{ID: "s1e1", Number: 1, Title: "The Fold", VideoURL: "https://videos.example.com/anime/paper-blades/s1e1.mp4"},
				},
			}},
		},
	}
}
