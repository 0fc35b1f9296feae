// Package badgerstore is the reference Repository implementation backing
// the DCInside crawl engine, provided as a runnable example backend —
// the concrete storage implementation is an external collaborator per
// spec.md §1, but kept here to exercise the Repository port (pkg/dcrepo)
// end to end. Grounded on the teacher's pkg/storage/badger_store.go: key
// prefixing, JSON-encoded values, the conflict-retry Update wrapper, and
// the atomic cached key count all follow that file's shape, generalized
// from page/image visited-state to post/comment records.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dclog"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
)

const (
	postKeyPrefix    = "post:"    // post:<scenarioID>:<platformPostID>
	commentKeyPrefix = "comment:" // comment:<scenarioID>:<platformCommentID>
	maxConflictRetries = 10
)

// Store implements dcrepo.Repository on top of BadgerDB.
type Store struct {
	db       *badger.DB
	log      *logrus.Entry
	postKeys atomic.Int64
}

// Open initializes a Store at dbPath, creating it if absent.
func Open(dbPath string, log *logrus.Entry) (*Store, error) {
	badgerLogger := dclog.NewBadgerLogrusAdapter(log.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).WithLogger(badgerLogger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger db at %s: %v", dcerrors.ErrBackend, dbPath, err)
	}

	s := &Store{db: db, log: log}
	if err := s.loadKeyCount(); err != nil {
		log.WithError(err).Warn("failed counting existing post keys on open")
	}
	return s, nil
}

func (s *Store) loadKeyCount() error {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(postKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	if err == nil {
		s.postKeys.Store(int64(count))
	}
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		return s.db.Close()
	}
	return nil
}

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction
// conflicts, grounded on the teacher's dbUpdate helper.
func (s *Store) dbUpdate(fn func(txn *badger.Txn) error) error {
	var lastErr error
	for i := 0; i < maxConflictRetries; i++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		lastErr = err
		s.log.Debugf("badger transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries: %v", dcerrors.ErrBackend, maxConflictRetries, lastErr)
}

func postKey(scenarioID string, id dcmodel.PlatformPostID) []byte {
	return []byte(postKeyPrefix + scenarioID + ":" + string(id))
}

func commentKey(scenarioID string, id dcmodel.PlatformCommentID) []byte {
	return []byte(commentKeyPrefix + scenarioID + ":" + string(id))
}

// FindPostByPlatformID implements dcrepo.PostStore.
func (s *Store) FindPostByPlatformID(_ context.Context, scenarioID string, id dcmodel.PlatformPostID) (*dcmodel.Post, error) {
	key := postKey(scenarioID, id)
	var post dcmodel.Post
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if jsonErr := json.Unmarshal(val, &post); jsonErr != nil {
				// Defensive posture matching the teacher's CheckPageStatus:
				// an undecodable value is treated as absent, not a hard error.
				s.log.WithError(jsonErr).Warn("failed to unmarshal post entry, treating as not found")
				return nil
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading post key '%s': %v", dcerrors.ErrBackend, key, err)
	}
	if !found {
		return nil, nil
	}
	return &post, nil
}

// InsertPost implements dcrepo.PostStore.
func (s *Store) InsertPost(_ context.Context, in dcmodel.PostInput) (dcmodel.Post, error) {
	post := dcmodel.Post{
		ID:             uuid.NewString(),
		ScenarioID:     in.ScenarioID,
		PlatformPostID: in.PlatformPostID,
		URL:            in.URL,
		Title:          in.Title,
		Contents:       in.Contents,
		Writer:         in.Writer,
		WriterID:       in.WriterID,
		WriterIP:       in.WriterIP,
		WrittenAt:      in.WrittenAt,
		LikeCnt:        in.LikeCnt,
		DislikeCnt:     in.DislikeCnt,
		CommentCnt:     in.CommentCnt,
	}

	data, err := json.Marshal(post)
	if err != nil {
		return dcmodel.Post{}, fmt.Errorf("%w: marshaling post: %v", dcerrors.ErrBackend, err)
	}

	key := postKey(in.ScenarioID, in.PlatformPostID)
	err = s.dbUpdate(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return dcmodel.Post{}, fmt.Errorf("%w: inserting post key '%s': %v", dcerrors.ErrBackend, key, err)
	}
	s.postKeys.Add(1)

	return post, nil
}

// UpdatePostCommentCount implements dcrepo.PostStore. It scans for the
// post by surrogate ID, since the comment-count update is keyed by the
// backend ID returned from InsertPost rather than by platform ID.
func (s *Store) UpdatePostCommentCount(_ context.Context, postID string, n int) error {
	return s.dbUpdate(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			var post dcmodel.Post
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &post)
			})
			if err != nil || post.ID != postID {
				continue
			}

			post.CommentCnt = n
			data, err := json.Marshal(post)
			if err != nil {
				return fmt.Errorf("%w: marshaling updated post: %v", dcerrors.ErrBackend, err)
			}
			return txn.Set(item.KeyCopy(nil), data)
		}
		return fmt.Errorf("%w: post id '%s' not found for comment count update", dcerrors.ErrBackend, postID)
	})
}

// ListRecentPosts implements dcrepo.PostStore, scanning the scenario's
// post keys and filtering by WrittenAt >= since. Posts are matched by
// their written-at time, not by when they were persisted: the store
// keeps no persistence timestamp. A full scan is
// acceptable for this reference backend; a production store would
// maintain a time-ordered secondary index.
func (s *Store) ListRecentPosts(_ context.Context, scenarioID string, since time.Time) ([]dcmodel.Post, error) {
	prefix := []byte(postKeyPrefix + scenarioID + ":")
	var posts []dcmodel.Post

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var post dcmodel.Post
				if jsonErr := json.Unmarshal(val, &post); jsonErr != nil {
					return nil
				}
				if !post.WrittenAt.Before(since) {
					posts = append(posts, post)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing recent posts: %v", dcerrors.ErrBackend, err)
	}
	return posts, nil
}

// InsertCommentsBulk implements dcrepo.CommentStore: one transaction per
// page-granular batch, matching spec.md §4.5.
func (s *Store) InsertCommentsBulk(_ context.Context, in []dcmodel.CommentInput) error {
	return s.dbUpdate(func(txn *badger.Txn) error {
		for _, comment := range in {
			data, err := json.Marshal(comment)
			if err != nil {
				return fmt.Errorf("%w: marshaling comment: %v", dcerrors.ErrBackend, err)
			}
			key := commentKey(comment.ScenarioID, comment.PlatformCommentID)
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommentExists implements dcrepo.CommentStore.
func (s *Store) CommentExists(_ context.Context, scenarioID string, id dcmodel.PlatformCommentID) (bool, error) {
	key := commentKey(scenarioID, id)
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: checking comment key '%s': %v", dcerrors.ErrBackend, key, err)
	}
	return exists, nil
}
