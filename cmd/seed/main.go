// Command main runs the database seeder for Warden.
package main

import (
	"context"
	"flag"
	"log"

	"warden/internal/config"
	"warden/internal/database"
	"warden/internal/seed"
	"warden/internal/service"
)

func main() {
	numAuthors := flag.Int("authors", 50, "Number of distinct users producing content and reports")
	numContents := flag.Int("contents", 300, "Number of content records to create")
	numReports := flag.Int("reports", 400, "Number of reports to file")
	numWarnings := flag.Int("warnings", 20, "Number of warnings to issue")
	termsFile := flag.String("terms", "", "YAML banned-term file to import into the managed list")
	randomSeed := flag.Int64("random-seed", 0, "Fix the generated data (0 = random)")
	shouldClean := flag.Bool("clean", true, "Clean moderation tables before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d authors, %d contents, %d reports, clean=%v\n",
		*numAuthors, *numContents, *numReports, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	summary, err := seed.Seed(db, seed.Options{
		NumAuthors:       *numAuthors,
		NumContents:      *numContents,
		NumReports:       *numReports,
		NumWarnings:      *numWarnings,
		ConcealThreshold: cfg.ReportConcealThreshold,
		ShouldClean:      *shouldClean,
		RandomSeed:       *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if *termsFile != "" {
		terms, err := service.LoadBannedTermsFile(*termsFile)
		if err != nil {
			log.Fatalf("Failed to read banned terms: %v", err)
		}
		added, err := seed.BannedTerms(context.Background(), db, terms, 1)
		if err != nil {
			log.Fatalf("Banned term import failed: %v", err)
		}
		log.Printf("Imported %d of %d banned terms", added, len(terms))
	}

	log.Printf("Done: %d contents, %d reports (%d concealed), %d warnings",
		summary.Contents, summary.Reports, summary.Concealed, summary.Warnings)
}
