package moderation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Words live in the keys only.
const wordPrefix = "blacklist:"

// WordStore keeps the masking dictionary on disk between runs.
type WordStore struct {
	db  *badger.DB
	log *slog.Logger
}

func OpenWordStore(path string, log *slog.Logger) (*WordStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(storeLogger{log: log}))
	if err != nil {
		return nil, fmt.Errorf("open word store %s: %w", path, err)
	}
	return &WordStore{db: db, log: log}, nil
}

// Add stores words, ignoring blanks. Existing words are overwritten.
func (s *WordStore) Add(words ...string) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	added := 0
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if err := wb.Set([]byte(wordPrefix+word), nil); err != nil {
			return err
		}
		added++
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	s.log.Debug("Censored words stored", "count", added)
	return nil
}

// Remove deletes words; unknown words are ignored.
func (s *WordStore) Remove(words ...string) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if err := wb.Delete([]byte(wordPrefix + word)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Words lists every stored word in key order.
func (s *WordStore) Words() ([]string, error) {
	var words []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(wordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return words, err
}

func (s *WordStore) Close() error {
	return s.db.Close()
}
