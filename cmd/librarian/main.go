package main

import (
	"context"
	"os"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/i18n"
	"github.com/shishobooks/circulation/pkg/lending"
	"github.com/shishobooks/circulation/pkg/librarian"
	"github.com/shishobooks/circulation/pkg/members"
	"github.com/shishobooks/circulation/pkg/migrations"
)

func main() {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		logger.New().Err(err).Fatal("config error")
	}

	// Engine logs would interleave with command output, so only problems are
	// logged unless database debugging is on.
	level := "warn"
	if cfg.DatabaseDebug {
		level = "debug"
	}
	log := logger.NewWithLevel(level)
	ctx = log.WithContext(ctx)
	if cfg.DatabaseDebug {
		ctx = database.WithLogging(ctx)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		log.Err(err).Fatal("migrations error")
	}

	trans, err := i18n.New(cfg.DisplayLanguage)
	if err != nil {
		log.Err(err).Fatal("translator error")
	}

	app := librarian.New(librarian.Options{
		Books:           books.NewService(db),
		Members:         members.NewService(db),
		Lending:         lending.NewService(db),
		Trans:           trans,
		DefaultLoanDays: cfg.DefaultLoanDays,
		Out:             os.Stdout,
		ErrOut:          os.Stderr,
		Width:           librarian.TerminalWidth(os.Stdout),
	})
	code := app.Run(ctx, os.Args)

	if err := db.Close(); err != nil {
		log.Err(err).Error("database close error")
	}
	os.Exit(code)
}
