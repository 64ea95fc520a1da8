// Package main provides a tool to seed the database with test reader activity.
//
// This reads existing books and users from the database and creates loves,
// bookmarks, ratings, and comments to exercise the interaction endpoints.
//
// Usage:
//
//	DB_PATH=~/ebookhub/db go run ./cmd/seed
//	DB_PATH=~/ebookhub/db go run ./cmd/seed --create-users  # Also create test readers
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/ebookhub/ebookhub-server/internal/auth"
	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/id"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

var createUsers = flag.Bool("create-users", false, "Create test reader accounts")

var sampleComments = []string{
	"Could not put this one down.",
	"The pacing drags in the middle but the ending lands.",
	"Looking forward to the next chapter.",
	"The fork of this book takes the story somewhere much darker.",
	"Reread this for the third time. Still holds up.",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/ebookhub/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUsers {
		createTestReaders(ctx, s)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to get users: %v", err)
	}
	if len(users) == 0 {
		log.Fatal("No users found in database. Create a user first.")
	}
	fmt.Printf("Found %d users\n", len(users))

	result, err := s.ListBooks(ctx, store.PaginationParams{Limit: 1000})
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	books := result.Items
	if len(books) == 0 {
		log.Fatal("No books found in database. Upload a book first.")
	}
	fmt.Printf("Found %d books\n", len(books))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, user := range users {
		fmt.Printf("\nSeeding activity for user: %s (%s)\n", user.Username, user.ID)

		// Pick a few random books for this user
		numBooks := min(2+rng.Intn(3), len(books))
		shuffled := make([]*domain.Book, len(books))
		copy(shuffled, books)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		selected := shuffled[:numBooks]

		created := 0
		for _, book := range selected {
			if rng.Float32() < 0.7 {
				love := &domain.Love{
					ID:        id.MustGenerate("love"),
					UserID:    user.ID,
					BookID:    book.ID,
					CreatedAt: time.Now(),
				}
				if err := s.CreateLove(ctx, love); err == nil {
					created++
				}
			}

			if rng.Float32() < 0.5 {
				bookmark := &domain.Bookmark{
					ID:        id.MustGenerate("bookmark"),
					UserID:    user.ID,
					BookID:    book.ID,
					CreatedAt: time.Now(),
				}
				if err := s.CreateBookmark(ctx, bookmark); err == nil {
					created++
				}
			}

			// Ratings skew positive, in half-star steps
			rating := &domain.Rating{
				ID:        id.MustGenerate("rating"),
				UserID:    user.ID,
				BookID:    book.ID,
				Value:     float64(5+rng.Intn(6)) * 0.5,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if _, err := s.UpsertRating(ctx, rating); err == nil {
				created++
			}

			if rng.Float32() < 0.4 {
				comment := &domain.Comment{
					ID:        id.MustGenerate("comment"),
					UserID:    user.ID,
					BookID:    book.ID,
					Content:   sampleComments[rng.Intn(len(sampleComments))],
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				if err := s.CreateComment(ctx, comment); err == nil {
					created++
				}
			}
		}

		fmt.Printf("  Created %d interactions across %d books\n", created, numBooks)
	}

	fmt.Println("\nSeeding complete!")
}

func createTestReaders(ctx context.Context, s *store.Store) {
	names := []struct {
		username string
		fullName string
	}{
		{"reader-yuki", "Yuki Tanaka"},
		{"reader-maren", "Maren Holt"},
		{"reader-deniz", "Deniz Aksoy"},
	}

	hash, err := auth.HashPassword("seed-password-please-change")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, n := range names {
		user := &domain.User{
			Syncable: domain.Syncable{
				ID: id.MustGenerate("user"),
			},
			Username:     n.username,
			Email:        n.username + "@example.com",
			PasswordHash: hash,
			FullName:     n.fullName,
			Role:         domain.RoleReader,
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("Skipping %s: %v", n.username, err)
			continue
		}
		fmt.Printf("Created test reader: %s\n", n.username)
	}
}
