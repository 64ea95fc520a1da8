// Package main provides a read-only inspection tool for the EbookHub database.
//
// Usage:
//
//	DB_PATH=~/ebookhub/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/ebookhub/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	userCount := countPrefix(db, "user:")
	chapterCounts := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("chapter:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var chapter domain.Chapter
				if err := json.Unmarshal(val, &chapter); err != nil {
					return err
				}
				chapterCounts[chapter.BookID]++
				return nil
			})
			if err != nil {
				log.Printf("Error reading chapter: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating chapters: %v", err)
	}

	bookCount := 0
	booksWithChapters := 0
	booksWithoutChapters := 0
	totalChapters := 0
	shown := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				chapters := chapterCounts[book.ID]
				totalChapters += chapters

				if chapters > 0 {
					booksWithChapters++
				} else {
					booksWithoutChapters++
				}

				if shown < 5 {
					shown++
					fmt.Printf("Book: %s\n", book.Title)
					fmt.Printf("  ID: %s\n", book.ID)
					fmt.Printf("  Publisher: %s\n", book.PublisherID)
					fmt.Printf("  Chapters: %d (field says %d)\n", chapters, book.ChapterCount)
					if book.Rating != nil {
						fmt.Printf("  Rating: %.2f\n", *book.Rating)
					}
					fmt.Printf("  Forkable: %v  Ongoing: %v\n", book.CanFork, book.Ongoing)
					fmt.Println()
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading book: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating books: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Total books: %d\n", bookCount)
	fmt.Printf("Books with chapters: %d\n", booksWithChapters)
	fmt.Printf("Books without chapters: %d\n", booksWithoutChapters)
	fmt.Printf("Total chapters: %d\n", totalChapters)
	if bookCount > 0 {
		fmt.Printf("Average chapters per book: %.1f\n", float64(totalChapters)/float64(bookCount))
	}
}

func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}
