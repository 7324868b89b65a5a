package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/migrations"
)

type bookRecord struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type rejectedRecord struct {
	Index int
	Err   error
}

// checkRecords normalizes every record in place and returns the ones that
// AddBook would refuse.
func checkRecords(records []bookRecord) []rejectedRecord {
	var rejected []rejectedRecord
	for i := range records {
		title, author, err := books.NormalizeBook(records[i].Title, records[i].Author)
		if err != nil {
			rejected = append(rejected, rejectedRecord{Index: i, Err: err})
			continue
		}
		records[i].Title = title
		records[i].Author = author
	}
	return rejected
}

func main() {
	log := logger.New()
	ctx := log.WithContext(context.Background())

	var opts struct {
		DryRun bool `short:"n" long:"dry-run" description:"Check every record (blank titles or authors) without adding any books"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/import-books [--dry-run] <path/to/books.json>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Err(err).Fatal("read file error")
	}

	var records []bookRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Err(err).Fatal("json parse error")
	}

	rejected := checkRecords(records)
	for _, r := range rejected {
		fmt.Printf("record %d: %s\n", r.Index, r.Err)
	}

	if opts.DryRun {
		fmt.Printf("%d of %d books would be added\n", len(records)-len(rejected), len(records))
		return
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}
	if cfg.DatabaseDebug {
		ctx = database.WithLogging(ctx)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		log.Err(err).Fatal("migrations error")
	}

	skip := make(map[int]bool, len(rejected))
	for _, r := range rejected {
		skip[r.Index] = true
	}

	svc := books.NewService(db)
	added := 0
	for i, r := range records {
		if skip[i] {
			continue
		}
		if _, err := svc.AddBook(ctx, r.Title, r.Author); err != nil {
			log.Warn("book skipped", logger.Data{"index": i, "title": r.Title, "error": err.Error()})
			continue
		}
		added++
	}
	fmt.Printf("Added %d of %d books\n", added, len(records))
}
