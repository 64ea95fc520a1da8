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
	bookPrefix            = "book:"
	bookByPublisherPrefix = "idx:books:publisher:" // userID:bookID, for publisher catalogs
	bookByAuthorPrefix    = "idx:books:author:"    // authorID:bookID, for author pages
)

var (
	// ErrBookNotFound is returned when a book cannot be found by ID.
	ErrBookNotFound = errors.New("book not found")
	// ErrBookExists is returned when attempting to create a book with an existing ID.
	ErrBookExists = errors.New("book already exists")
)

// CreateBook creates a new book record with its secondary indexes.
func (s *Store) CreateBook(_ context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.writeBookTxn(txn, book)
	})
}

// writeBookTxn writes a book and its index keys inside an existing transaction.
// Shared with the fork workflow, which creates a book atomically with its
// Fork record.
func (s *Store) writeBookTxn(txn *badger.Txn, book *domain.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	if err := txn.Set([]byte(bookPrefix+book.ID), data); err != nil {
		return err
	}

	if book.PublisherID != "" {
		key := []byte(bookByPublisherPrefix + book.PublisherID + ":" + book.ID)
		if err := txn.Set(key, []byte{}); err != nil {
			return err
		}
	}

	if book.AuthorID != "" {
		key := []byte(bookByAuthorPrefix + book.AuthorID + ":" + book.ID)
		if err := txn.Set(key, []byte{}); err != nil {
			return err
		}
	}

	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if book.IsDeleted() {
		return nil, ErrBookNotFound
	}

	return &book, nil
}

// UpdateBook updates an existing book, moving index entries if the
// publisher or author reference changed.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	oldBook, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}

	book.Touch()

	return s.db.Update(func(txn *badger.Txn) error {
		if oldBook.PublisherID != book.PublisherID && oldBook.PublisherID != "" {
			oldKey := []byte(bookByPublisherPrefix + oldBook.PublisherID + ":" + book.ID)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		if oldBook.AuthorID != book.AuthorID && oldBook.AuthorID != "" {
			oldKey := []byte(bookByAuthorPrefix + oldBook.AuthorID + ":" + book.ID)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return s.writeBookTxn(txn, book)
	})
}

// DeleteBook deletes a book and cascades to its chapters and reader
// interactions. Fork records are kept for provenance.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil // Already gone
		}
		return err
	}

	// Chapters go first so a crash mid-delete never orphans them behind
	// a missing book.
	if err := s.DeleteBookChapters(ctx, id); err != nil {
		return fmt.Errorf("cascade chapters: %w", err)
	}

	if err := s.deleteBookInteractions(ctx, id); err != nil {
		return fmt.Errorf("cascade interactions: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if book.PublisherID != "" {
			key := []byte(bookByPublisherPrefix + book.PublisherID + ":" + id)
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		if book.AuthorID != "" {
			key := []byte(bookByAuthorPrefix + book.AuthorID + ":" + id)
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return txn.Delete([]byte(bookPrefix + id))
	})
}

// ListBooks returns a page of books ordered by ID.
func (s *Store) ListBooks(_ context.Context, params PaginationParams) (*PaginatedResult[*domain.Book], error) {
	params.Validate()

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if startKey == "" {
		startKey = bookPrefix
	}

	prefix := []byte(bookPrefix)
	result := &PaginatedResult[*domain.Book]{}
	var lastKey string

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(startKey)); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if key == startKey && params.Cursor != "" {
				continue // Cursor points at the last item of the previous page
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("unmarshal book %s: %w", key, err)
			}

			if book.IsDeleted() {
				continue
			}

			// Only a live row past the limit makes another page; a tail of
			// soft-deleted rows does not.
			if len(result.Items) >= params.Limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			result.Items = append(result.Items, &book)
			lastKey = key
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return result, nil
}

// ListBooksByPublisher returns all books published by the given user.
func (s *Store) ListBooksByPublisher(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.listBooksByIndex(ctx, bookByPublisherPrefix+userID+":")
}

// ListBooksByAuthor returns all books attributed to the given author.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	return s.listBooksByIndex(ctx, bookByAuthorPrefix+authorID+":")
}

func (s *Store) listBooksByIndex(ctx context.Context, indexPrefix string) ([]*domain.Book, error) {
	prefix := []byte(indexPrefix)
	var bookIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			bookID := key[len(indexPrefix):]
			if bookID != "" {
				bookIDs = append(bookIDs, bookID)
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan book index: %w", err)
	}

	books := make([]*domain.Book, 0, len(bookIDs))
	for _, id := range bookIDs {
		book, err := s.GetBook(ctx, id)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		books = append(books, book)
	}

	return books, nil
}

// GetBooksByIDs resolves a set of book IDs, skipping ones that no longer exist.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		book, err := s.GetBook(ctx, id)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				continue
			}
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// ListBookTitles returns the title of every book in the catalog.
// Used for the lightweight catalog name listing.
func (s *Store) ListBookTitles(_ context.Context) ([]string, error) {
	prefix := []byte(bookPrefix)
	var titles []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				continue // Skip malformed entries
			}

			if !book.IsDeleted() {
				titles = append(titles, book.Title)
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list book titles: %w", err)
	}

	return titles, nil
}
