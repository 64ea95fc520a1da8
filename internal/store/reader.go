package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

// Reader interaction keys. Pair indexes enforce at-most-one-per-pair for
// loves, bookmarks, ratings, and comment likes. Comments are unbounded and
// only carry listing indexes.
const (
	lovePrefix       = "love:"
	loveByPairPrefix = "idx:loves:pair:" // userID:bookID -> loveID
	loveByBookPrefix = "idx:loves:book:" // bookID:loveID
	loveByUserPrefix = "idx:loves:user:" // userID:loveID

	bookmarkPrefix       = "bookmark:"
	bookmarkByPairPrefix = "idx:bookmarks:pair:"
	bookmarkByBookPrefix = "idx:bookmarks:book:"
	bookmarkByUserPrefix = "idx:bookmarks:user:"

	ratingPrefix       = "rating:"
	ratingByPairPrefix = "idx:ratings:pair:"
	ratingByBookPrefix = "idx:ratings:book:"
	ratingByUserPrefix = "idx:ratings:user:"

	commentPrefix       = "comment:"
	commentByBookPrefix = "idx:comments:book:"
	commentByUserPrefix = "idx:comments:user:"

	commentLikePrefix          = "commentlike:"
	commentLikeByPairPrefix    = "idx:commentlikes:pair:"    // userID:commentID -> likeID
	commentLikeByCommentPrefix = "idx:commentlikes:comment:" // commentID:likeID
)

var (
	// ErrAlreadyLoved is returned when a user loves the same book twice.
	ErrAlreadyLoved = errors.New("book already loved by this user")
	// ErrAlreadyBookmarked is returned when a user bookmarks the same book twice.
	ErrAlreadyBookmarked = errors.New("book already bookmarked by this user")
	// ErrAlreadyLiked is returned when a user likes the same comment twice.
	ErrAlreadyLiked = errors.New("comment already liked by this user")
	// ErrCommentNotFound is returned when a comment cannot be found by ID.
	ErrCommentNotFound = errors.New("comment not found")
)

// Loves

// CreateLove records that a user loves a book. At most one love per
// (user, book) pair.
func (s *Store) CreateLove(_ context.Context, love *domain.Love) error {
	pairKey := []byte(loveByPairPrefix + love.UserID + ":" + love.BookID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(pairKey)
		if err == nil {
			return ErrAlreadyLoved
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check love pair: %w", err)
		}

		data, err := json.Marshal(love)
		if err != nil {
			return fmt.Errorf("marshal love: %w", err)
		}

		if err := txn.Set([]byte(lovePrefix+love.ID), data); err != nil {
			return err
		}
		if err := txn.Set(pairKey, []byte(love.ID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(loveByBookPrefix+love.BookID+":"+love.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set([]byte(loveByUserPrefix+love.UserID+":"+love.ID), []byte{})
	})
}

// DeleteLove removes a user's love for a book. Idempotent.
func (s *Store) DeleteLove(_ context.Context, userID, bookID string) error {
	pairKey := []byte(loveByPairPrefix + userID + ":" + bookID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Nothing to remove
		}
		if err != nil {
			return fmt.Errorf("get love pair: %w", err)
		}

		var loveID string
		if err := item.Value(func(val []byte) error {
			loveID = string(val)
			return nil
		}); err != nil {
			return err
		}

		for _, key := range [][]byte{
			[]byte(lovePrefix + loveID),
			pairKey,
			[]byte(loveByBookPrefix + bookID + ":" + loveID),
			[]byte(loveByUserPrefix + userID + ":" + loveID),
		} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
}

// ListBookLoves returns every love recorded for a book.
func (s *Store) ListBookLoves(_ context.Context, bookID string) ([]*domain.Love, error) {
	var loves []*domain.Love
	err := s.collectByIndex(loveByBookPrefix+bookID+":", lovePrefix, func(val []byte) error {
		var love domain.Love
		if err := json.Unmarshal(val, &love); err != nil {
			return err
		}
		loves = append(loves, &love)
		return nil
	})
	return loves, err
}

// ListUserLoves returns every love a user has recorded.
func (s *Store) ListUserLoves(_ context.Context, userID string) ([]*domain.Love, error) {
	var loves []*domain.Love
	err := s.collectByIndex(loveByUserPrefix+userID+":", lovePrefix, func(val []byte) error {
		var love domain.Love
		if err := json.Unmarshal(val, &love); err != nil {
			return err
		}
		loves = append(loves, &love)
		return nil
	})
	return loves, err
}

// ListUserLovedBooks resolves the books a user has loved.
func (s *Store) ListUserLovedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	loves, err := s.ListUserLoves(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookIDs := make([]string, 0, len(loves))
	for _, love := range loves {
		bookIDs = append(bookIDs, love.BookID)
	}
	return s.GetBooksByIDs(ctx, bookIDs)
}

// Bookmarks

// CreateBookmark records that a user bookmarked a book. At most one
// bookmark per (user, book) pair.
func (s *Store) CreateBookmark(_ context.Context, bookmark *domain.Bookmark) error {
	pairKey := []byte(bookmarkByPairPrefix + bookmark.UserID + ":" + bookmark.BookID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(pairKey)
		if err == nil {
			return ErrAlreadyBookmarked
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check bookmark pair: %w", err)
		}

		data, err := json.Marshal(bookmark)
		if err != nil {
			return fmt.Errorf("marshal bookmark: %w", err)
		}

		if err := txn.Set([]byte(bookmarkPrefix+bookmark.ID), data); err != nil {
			return err
		}
		if err := txn.Set(pairKey, []byte(bookmark.ID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(bookmarkByBookPrefix+bookmark.BookID+":"+bookmark.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set([]byte(bookmarkByUserPrefix+bookmark.UserID+":"+bookmark.ID), []byte{})
	})
}

// DeleteBookmark removes a user's bookmark for a book. Idempotent.
func (s *Store) DeleteBookmark(_ context.Context, userID, bookID string) error {
	pairKey := []byte(bookmarkByPairPrefix + userID + ":" + bookID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get bookmark pair: %w", err)
		}

		var bookmarkID string
		if err := item.Value(func(val []byte) error {
			bookmarkID = string(val)
			return nil
		}); err != nil {
			return err
		}

		for _, key := range [][]byte{
			[]byte(bookmarkPrefix + bookmarkID),
			pairKey,
			[]byte(bookmarkByBookPrefix + bookID + ":" + bookmarkID),
			[]byte(bookmarkByUserPrefix + userID + ":" + bookmarkID),
		} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
}

// ListBookBookmarks returns every bookmark recorded for a book.
func (s *Store) ListBookBookmarks(_ context.Context, bookID string) ([]*domain.Bookmark, error) {
	var bookmarks []*domain.Bookmark
	err := s.collectByIndex(bookmarkByBookPrefix+bookID+":", bookmarkPrefix, func(val []byte) error {
		var bookmark domain.Bookmark
		if err := json.Unmarshal(val, &bookmark); err != nil {
			return err
		}
		bookmarks = append(bookmarks, &bookmark)
		return nil
	})
	return bookmarks, err
}

// ListUserBookmarkedBooks resolves the books a user has bookmarked.
func (s *Store) ListUserBookmarkedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	var bookmarks []*domain.Bookmark
	err := s.collectByIndex(bookmarkByUserPrefix+userID+":", bookmarkPrefix, func(val []byte) error {
		var bookmark domain.Bookmark
		if err := json.Unmarshal(val, &bookmark); err != nil {
			return err
		}
		bookmarks = append(bookmarks, &bookmark)
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookIDs := make([]string, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		bookIDs = append(bookIDs, bookmark.BookID)
	}
	return s.GetBooksByIDs(ctx, bookIDs)
}

// Ratings

// UpsertRating records or overwrites a user's rating for a book and
// recomputes the book's aggregate as the mean of all ratings, rounded to
// two decimals. Everything happens in one transaction so concurrent
// submissions for the same book serialize instead of losing updates.
//
// The passed rating carries the candidate identity for a first-time
// submission. On overwrite the stored rating keeps its original ID and
// CreatedAt; only Value and UpdatedAt change. The updated book is returned.
func (s *Store) UpsertRating(_ context.Context, rating *domain.Rating) (*domain.Book, error) {
	pairKey := []byte(ratingByPairPrefix + rating.UserID + ":" + rating.BookID)
	bookKey := []byte(bookPrefix + rating.BookID)

	var updatedBook domain.Book
	var stored domain.Rating

	err := s.db.Update(func(txn *badger.Txn) error {
		// The book must exist before any rating write
		bookItem, err := txn.Get(bookKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}
		if err := bookItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &updatedBook)
		}); err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}
		if updatedBook.IsDeleted() {
			return ErrBookNotFound
		}

		// Overwrite in place if this user already rated the book
		stored = *rating
		item, err := txn.Get(pairKey)
		switch {
		case err == nil:
			var existingID string
			if err := item.Value(func(val []byte) error {
				existingID = string(val)
				return nil
			}); err != nil {
				return err
			}

			existingItem, err := txn.Get([]byte(ratingPrefix + existingID))
			if err != nil {
				return fmt.Errorf("get existing rating: %w", err)
			}

			var existing domain.Rating
			if err := existingItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}

			existing.Value = rating.Value
			existing.UpdatedAt = rating.UpdatedAt
			stored = existing
		case errors.Is(err, badger.ErrKeyNotFound):
			// First rating from this user for this book
		default:
			return fmt.Errorf("check rating pair: %w", err)
		}

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("marshal rating: %w", err)
		}

		if err := txn.Set([]byte(ratingPrefix+stored.ID), data); err != nil {
			return err
		}
		if err := txn.Set(pairKey, []byte(stored.ID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(ratingByBookPrefix+stored.BookID+":"+stored.ID), []byte{}); err != nil {
			return err
		}
		if err := txn.Set([]byte(ratingByUserPrefix+stored.UserID+":"+stored.ID), []byte{}); err != nil {
			return err
		}

		// Recompute the aggregate from every rating of this book,
		// including the one just written.
		mean, err := s.bookRatingMeanTxn(txn, stored.BookID)
		if err != nil {
			return err
		}

		updatedBook.Rating = &mean
		updatedBook.Touch()

		bookData, err := json.Marshal(&updatedBook)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(bookKey, bookData)
	})

	if err != nil {
		return nil, err
	}

	*rating = stored
	return &updatedBook, nil
}

// bookRatingMeanTxn computes the mean of all rating values for a book,
// rounded to two decimals, inside the given transaction.
func (s *Store) bookRatingMeanTxn(txn *badger.Txn, bookID string) (float64, error) {
	prefix := []byte(ratingByBookPrefix + bookID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var sum float64
	var count int

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		ratingID := key[len(prefix):]

		item, err := txn.Get([]byte(ratingPrefix + ratingID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue // Stale index entry
			}
			return 0, err
		}

		var rating domain.Rating
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rating)
		}); err != nil {
			return 0, err
		}

		sum += rating.Value
		count++
	}

	if count == 0 {
		return 0, nil
	}

	return math.Round(sum/float64(count)*100) / 100, nil
}

// ListBookRatings returns every rating recorded for a book.
func (s *Store) ListBookRatings(_ context.Context, bookID string) ([]*domain.Rating, error) {
	var ratings []*domain.Rating
	err := s.collectByIndex(ratingByBookPrefix+bookID+":", ratingPrefix, func(val []byte) error {
		var rating domain.Rating
		if err := json.Unmarshal(val, &rating); err != nil {
			return err
		}
		ratings = append(ratings, &rating)
		return nil
	})
	return ratings, err
}

// ListUserRatedBooks resolves the books a user has rated.
func (s *Store) ListUserRatedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	var ratings []*domain.Rating
	err := s.collectByIndex(ratingByUserPrefix+userID+":", ratingPrefix, func(val []byte) error {
		var rating domain.Rating
		if err := json.Unmarshal(val, &rating); err != nil {
			return err
		}
		ratings = append(ratings, &rating)
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookIDs := make([]string, 0, len(ratings))
	for _, rating := range ratings {
		bookIDs = append(bookIDs, rating.BookID)
	}
	return s.GetBooksByIDs(ctx, bookIDs)
}

// Comments

// CreateComment records a user's comment on a book. Comments are unbounded,
// a user may comment any number of times.
func (s *Store) CreateComment(_ context.Context, comment *domain.Comment) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(comment)
		if err != nil {
			return fmt.Errorf("marshal comment: %w", err)
		}

		if err := txn.Set([]byte(commentPrefix+comment.ID), data); err != nil {
			return err
		}
		if err := txn.Set([]byte(commentByBookPrefix+comment.BookID+":"+comment.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set([]byte(commentByUserPrefix+comment.UserID+":"+comment.ID), []byte{})
	})
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(_ context.Context, id string) (*domain.Comment, error) {
	key := []byte(commentPrefix + id)

	var comment domain.Comment
	if err := s.get(key, &comment); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

// ListBookComments returns every comment recorded for a book.
func (s *Store) ListBookComments(_ context.Context, bookID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.collectByIndex(commentByBookPrefix+bookID+":", commentPrefix, func(val []byte) error {
		var comment domain.Comment
		if err := json.Unmarshal(val, &comment); err != nil {
			return err
		}
		comments = append(comments, &comment)
		return nil
	})
	return comments, err
}

// ListUserCommentedBooks resolves the distinct books a user has commented on.
func (s *Store) ListUserCommentedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	var comments []*domain.Comment
	err := s.collectByIndex(commentByUserPrefix+userID+":", commentPrefix, func(val []byte) error {
		var comment domain.Comment
		if err := json.Unmarshal(val, &comment); err != nil {
			return err
		}
		comments = append(comments, &comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var bookIDs []string
	for _, comment := range comments {
		if !seen[comment.BookID] {
			seen[comment.BookID] = true
			bookIDs = append(bookIDs, comment.BookID)
		}
	}
	return s.GetBooksByIDs(ctx, bookIDs)
}

// Comment likes

// CreateCommentLike records that a user liked a comment. At most one like
// per (user, comment) pair. The comment must exist.
func (s *Store) CreateCommentLike(_ context.Context, like *domain.CommentLike) error {
	pairKey := []byte(commentLikeByPairPrefix + like.UserID + ":" + like.CommentID)
	commentKey := []byte(commentPrefix + like.CommentID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(commentKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCommentNotFound
		}
		if err != nil {
			return fmt.Errorf("check comment exists: %w", err)
		}

		_, err = txn.Get(pairKey)
		if err == nil {
			return ErrAlreadyLiked
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check like pair: %w", err)
		}

		data, err := json.Marshal(like)
		if err != nil {
			return fmt.Errorf("marshal comment like: %w", err)
		}

		if err := txn.Set([]byte(commentLikePrefix+like.ID), data); err != nil {
			return err
		}
		if err := txn.Set(pairKey, []byte(like.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(commentLikeByCommentPrefix+like.CommentID+":"+like.ID), []byte{})
	})
}

// ListCommentLikes returns every like recorded for a comment.
func (s *Store) ListCommentLikes(_ context.Context, commentID string) ([]*domain.CommentLike, error) {
	var likes []*domain.CommentLike
	err := s.collectByIndex(commentLikeByCommentPrefix+commentID+":", commentLikePrefix, func(val []byte) error {
		var like domain.CommentLike
		if err := json.Unmarshal(val, &like); err != nil {
			return err
		}
		likes = append(likes, &like)
		return nil
	})
	return likes, err
}

// collectByIndex walks an index whose keys end with the target entity ID
// and invokes fn with each resolved entity's raw value.
func (s *Store) collectByIndex(indexPrefix, entityPrefix string, fn func(val []byte) error) error {
	prefix := []byte(indexPrefix)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			entityID := key[len(indexPrefix):]

			item, err := txn.Get([]byte(entityPrefix + entityID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue // Stale index entry
				}
				return err
			}

			if err := item.Value(fn); err != nil {
				return err
			}
		}

		return nil
	})
}

// deleteBookInteractions removes all loves, bookmarks, ratings, comments,
// and comment likes attached to a book. Used by the book delete cascade.
func (s *Store) deleteBookInteractions(ctx context.Context, bookID string) error {
	loves, err := s.ListBookLoves(ctx, bookID)
	if err != nil {
		return err
	}
	for _, love := range loves {
		if err := s.DeleteLove(ctx, love.UserID, bookID); err != nil {
			return err
		}
	}

	bookmarks, err := s.ListBookBookmarks(ctx, bookID)
	if err != nil {
		return err
	}
	for _, bookmark := range bookmarks {
		if err := s.DeleteBookmark(ctx, bookmark.UserID, bookID); err != nil {
			return err
		}
	}

	ratings, err := s.ListBookRatings(ctx, bookID)
	if err != nil {
		return err
	}
	for _, rating := range ratings {
		if err := s.deleteRating(rating); err != nil {
			return err
		}
	}

	comments, err := s.ListBookComments(ctx, bookID)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := s.deleteComment(ctx, comment); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) deleteRating(rating *domain.Rating) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{
			[]byte(ratingPrefix + rating.ID),
			[]byte(ratingByPairPrefix + rating.UserID + ":" + rating.BookID),
			[]byte(ratingByBookPrefix + rating.BookID + ":" + rating.ID),
			[]byte(ratingByUserPrefix + rating.UserID + ":" + rating.ID),
		} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

func (s *Store) deleteComment(ctx context.Context, comment *domain.Comment) error {
	likes, err := s.ListCommentLikes(ctx, comment.ID)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, like := range likes {
			for _, key := range [][]byte{
				[]byte(commentLikePrefix + like.ID),
				[]byte(commentLikeByPairPrefix + like.UserID + ":" + comment.ID),
				[]byte(commentLikeByCommentPrefix + comment.ID + ":" + like.ID),
			} {
				if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
			}
		}

		for _, key := range [][]byte{
			[]byte(commentPrefix + comment.ID),
			[]byte(commentByBookPrefix + comment.BookID + ":" + comment.ID),
			[]byte(commentByUserPrefix + comment.UserID + ":" + comment.ID),
		} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
}
