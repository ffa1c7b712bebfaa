// Command seed fills the configured store with demo volunteer posts.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/emilythestrangee/volunteer-board/backend/internal/config"
	"github.com/emilythestrangee/volunteer-board/backend/internal/database"
	"github.com/emilythestrangee/volunteer-board/backend/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 30, "Number of posts to create")
	numApplicants := flag.Int("applicants", 60, "Number of applications to attempt")
	maxSlots := flag.Int("max-slots", 10, "Upper bound for volunteer slots per post")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	log.Println("🌱 Volunteer Board Seeder")
	log.Printf("Target: %d posts, %d applications\n", *numPosts, *numApplicants)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Fatal("❌ Seeding the memory store has no effect; set STORE_DRIVER to postgres or mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Health.Close()

	s := seed.NewSeeder(store, seed.Options{
		Posts:      *numPosts,
		Applicants: *numApplicants,
		MaxSlots:   *maxSlots,
		RandomSeed: *randomSeed,
	})
	if _, err := s.Run(ctx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your store is now populated with demo data.")
}
