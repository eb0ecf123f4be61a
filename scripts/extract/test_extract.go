package main

import (
	"context"
	"log"
	"os"

	"github.com/quorumlabs/peerpanel/src/extract"
)

func main() {
	url := "https://scholar.google.com/citations?user=JicYPdAAAAAJ"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	pipe := extract.NewPipeline()
	prof := pipe.Extract(context.Background(), url)

	log.Printf("Profile from %s:", url)
	log.Printf("  Name: %s", prof.Name)
	log.Printf("  Source: %s", prof.Source)
	if prof.Bio != "" {
		log.Printf("  Bio: %s", prof.Bio)
	}
	if len(prof.ExpertiseAreas) > 0 {
		log.Printf("  Expertise:")
		for _, area := range prof.ExpertiseAreas {
			log.Printf("    - %s", area)
		}
	}
	if len(prof.Affiliations) > 0 {
		log.Printf("  Affiliations:")
		for _, aff := range prof.Affiliations {
			log.Printf("    - %s", aff)
		}
	}
	if len(prof.Publications) > 0 {
		log.Printf("  Publications:")
		for _, pub := range prof.Publications {
			log.Printf("    - %s", pub.Title)
		}
	}
	if prof.Note != "" {
		log.Printf("  Note: %s", prof.Note)
	}
	if prof.Error != "" {
		log.Printf("  Error: %s", prof.Error)
	}
}
