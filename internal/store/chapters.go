package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

const (
	chapterPrefix = "chapter:"
	// Chapter numbers are zero-padded in the index key so Badger's
	// lexicographic iteration yields read order.
	chapterByBookPrefix = "idx:chapters:book:" // bookID:%05d -> chapterID
)

var (
	// ErrChapterNotFound is returned when a chapter cannot be found by ID.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrChapterNumberTaken is returned when a chapter number is already used
	// within the same book.
	ErrChapterNumberTaken = errors.New("chapter number already taken")
)

func chapterNumberKey(bookID string, number int) []byte {
	return fmt.Appendf(nil, "%s%s:%05d", chapterByBookPrefix, bookID, number)
}

// CreateChapter creates a new chapter, enforcing per-book number uniqueness.
func (s *Store) CreateChapter(_ context.Context, chapter *domain.Chapter) error {
	key := []byte(chapterPrefix + chapter.ID)
	numberKey := chapterNumberKey(chapter.BookID, chapter.ChapterNumber)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check chapter exists: %w", err)
		}

		_, err = txn.Get(numberKey)
		if err == nil {
			return ErrChapterNumberTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check chapter number: %w", err)
		}

		data, err := json.Marshal(chapter)
		if err != nil {
			return fmt.Errorf("marshal chapter: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(numberKey, []byte(chapter.ID))
	})
}

// GetChapter retrieves a chapter by ID.
func (s *Store) GetChapter(_ context.Context, id string) (*domain.Chapter, error) {
	key := []byte(chapterPrefix + id)

	var chapter domain.Chapter
	if err := s.get(key, &chapter); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}

	return &chapter, nil
}

// UpdateChapter updates a chapter's title and content. The chapter number
// and publication date are immutable.
func (s *Store) UpdateChapter(ctx context.Context, chapter *domain.Chapter) error {
	old, err := s.GetChapter(ctx, chapter.ID)
	if err != nil {
		return err
	}

	// Never allow renumbering or republishing through updates
	chapter.ChapterNumber = old.ChapterNumber
	chapter.DatePublished = old.DatePublished
	chapter.BookID = old.BookID
	chapter.Touch()

	key := []byte(chapterPrefix + chapter.ID)
	return s.set(key, chapter)
}

// DeleteChapter removes a chapter and its number index entry.
func (s *Store) DeleteChapter(ctx context.Context, id string) error {
	chapter, err := s.GetChapter(ctx, id)
	if err != nil {
		if errors.Is(err, ErrChapterNotFound) {
			return nil // Already gone
		}
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(chapterNumberKey(chapter.BookID, chapter.ChapterNumber)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Delete([]byte(chapterPrefix + id))
	})
}

// ListBookChapters returns a book's chapters ordered by chapter number.
// A limit of 0 returns all chapters.
func (s *Store) ListBookChapters(ctx context.Context, bookID string, limit int) ([]*domain.Chapter, error) {
	prefix := []byte(chapterByBookPrefix + bookID + ":")
	var chapterIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(chapterIDs) >= limit {
				break
			}

			err := it.Item().Value(func(val []byte) error {
				chapterIDs = append(chapterIDs, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan chapter index: %w", err)
	}

	chapters := make([]*domain.Chapter, 0, len(chapterIDs))
	for _, id := range chapterIDs {
		chapter, err := s.GetChapter(ctx, id)
		if err != nil {
			if errors.Is(err, ErrChapterNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		chapters = append(chapters, chapter)
	}

	return chapters, nil
}

// NextChapterNumber returns the next free chapter number for a book,
// one past the current maximum.
func (s *Store) NextChapterNumber(_ context.Context, bookID string) (int, error) {
	prefix := []byte(chapterByBookPrefix + bookID + ":")
	max := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			var number int
			if _, err := fmt.Sscanf(key[len(prefix):], "%d", &number); err != nil {
				continue
			}
			if number > max {
				max = number
			}
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("scan chapter numbers: %w", err)
	}

	return max + 1, nil
}

// DeleteBookChapters removes every chapter of a book. Used by the book
// delete cascade.
func (s *Store) DeleteBookChapters(ctx context.Context, bookID string) error {
	chapters, err := s.ListBookChapters(ctx, bookID, 0)
	if err != nil {
		return err
	}

	for _, chapter := range chapters {
		if err := s.DeleteChapter(ctx, chapter.ID); err != nil {
			return fmt.Errorf("delete chapter %s: %w", chapter.ID, err)
		}
	}

	return nil
}
