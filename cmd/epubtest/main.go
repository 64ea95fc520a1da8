// Package main provides a tool to test EPUB chapter extraction against a file
// on disk without going through the upload pipeline.
//
// Usage:
//
//	go run ./cmd/epubtest <file.epub>
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ebookhub/ebookhub-server/internal/extract"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: epubtest <file.epub>")
	}

	path := os.Args[1]
	fmt.Printf("Testing: %s\n\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	entries, err := extract.Extract(data)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	fmt.Printf("Chapters: %d\n", len(entries))
	for i, entry := range entries {
		if i < 10 { // Show first 10 chapters
			words := len(strings.Fields(entry.Content))
			fmt.Printf("  [%d] %s (%d words)\n", entry.Number, entry.Title, words)
		}
	}
	if len(entries) > 10 {
		fmt.Printf("  ... and %d more chapters\n", len(entries)-10)
	}
}
