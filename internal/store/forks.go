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
	forkPrefix         = "fork:"
	forkByPairPrefix   = "idx:forks:pair:"   // originalBookID:userID -> forkID, one fork per user per original
	forkByUserPrefix   = "idx:forks:user:"   // userID:forkID, for listing a user's forks
	forkByTargetPrefix = "idx:forks:target:" // forkedBookID -> forkID, marks books that are fork results
)

var (
	// ErrForkNotFound is returned when a fork record cannot be found.
	ErrForkNotFound = errors.New("fork not found")
	// ErrAlreadyForked is returned when a user tries to fork the same book twice.
	ErrAlreadyForked = errors.New("book already forked by this user")
	// ErrBookIsForkResult is returned when the fork source is itself the
	// result of an earlier fork.
	ErrBookIsForkResult = errors.New("book is a fork result and cannot be forked")
)

// CreateForkPair writes the forked book and its Fork record in a single
// transaction. Either both become visible or neither does. The fork
// preconditions on the original (one fork per user, no forking fork
// results) are re-checked inside the transaction so concurrent fork
// requests for the same original serialize correctly.
func (s *Store) CreateForkPair(_ context.Context, forkedBook *domain.Book, fork *domain.Fork) error {
	pairKey := []byte(forkByPairPrefix + fork.OriginalBookID + ":" + fork.ForkedByUserID)
	sourceTargetKey := []byte(forkByTargetPrefix + fork.OriginalBookID)
	userKey := []byte(forkByUserPrefix + fork.ForkedByUserID + ":" + fork.ID)
	targetKey := []byte(forkByTargetPrefix + fork.ForkedBookID)

	return s.db.Update(func(txn *badger.Txn) error {
		// One fork per user per original
		_, err := txn.Get(pairKey)
		if err == nil {
			return ErrAlreadyForked
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check fork pair: %w", err)
		}

		// The original must not itself be a fork result
		_, err = txn.Get(sourceTargetKey)
		if err == nil {
			return ErrBookIsForkResult
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check fork target: %w", err)
		}

		if err := s.writeBookTxn(txn, forkedBook); err != nil {
			return err
		}

		data, err := json.Marshal(fork)
		if err != nil {
			return fmt.Errorf("marshal fork: %w", err)
		}

		if err := txn.Set([]byte(forkPrefix+fork.ID), data); err != nil {
			return err
		}

		if err := txn.Set(pairKey, []byte(fork.ID)); err != nil {
			return err
		}
		if err := txn.Set(userKey, []byte{}); err != nil {
			return err
		}
		return txn.Set(targetKey, []byte(fork.ID))
	})
}

// GetFork retrieves a fork record by ID.
func (s *Store) GetFork(_ context.Context, id string) (*domain.Fork, error) {
	key := []byte(forkPrefix + id)

	var fork domain.Fork
	if err := s.get(key, &fork); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrForkNotFound
		}
		return nil, fmt.Errorf("get fork: %w", err)
	}

	return &fork, nil
}

// HasUserForked reports whether the user already forked the given original.
func (s *Store) HasUserForked(_ context.Context, originalBookID, userID string) (bool, error) {
	return s.exists([]byte(forkByPairPrefix + originalBookID + ":" + userID))
}

// IsForkResult reports whether the book was produced by a fork.
func (s *Store) IsForkResult(_ context.Context, bookID string) (bool, error) {
	return s.exists([]byte(forkByTargetPrefix + bookID))
}

// ListUserForks returns all fork records created by a user.
func (s *Store) ListUserForks(ctx context.Context, userID string) ([]*domain.Fork, error) {
	prefix := []byte(forkByUserPrefix + userID + ":")
	var forkIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			forkIDs = append(forkIDs, key[len(prefix):])
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan fork index: %w", err)
	}

	forks := make([]*domain.Fork, 0, len(forkIDs))
	for _, id := range forkIDs {
		fork, err := s.GetFork(ctx, id)
		if err != nil {
			if errors.Is(err, ErrForkNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		forks = append(forks, fork)
	}

	return forks, nil
}

// ListUserForkedBooks resolves the books a user created by forking.
func (s *Store) ListUserForkedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	forks, err := s.ListUserForks(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookIDs := make([]string, 0, len(forks))
	for _, fork := range forks {
		bookIDs = append(bookIDs, fork.ForkedBookID)
	}

	return s.GetBooksByIDs(ctx, bookIDs)
}
