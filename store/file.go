package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"stockfolio"
)

// fileExt is the extension of per-user ledger files.
const fileExt = ".jsonl"

// FileStore keeps one JSONL ledger file per user under a root directory.
// The file name is the sanitized user id plus ".jsonl"; each line is one
// transaction, in arrival order.
type FileStore struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// NewFileStore opens (and creates if needed) a file store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a user id to its ledger file. The id is sanitized so that a
// hostile id cannot escape the store directory.
func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, sanitizeUserID(userID)+fileExt)
}

// sanitizeUserID reduces a user id to a safe file name component.
func sanitizeUserID(userID string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(userID) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return strings.TrimLeft(b.String(), ".")
}

func (s *FileStore) Load(userID string) (*stockfolio.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	f, err := os.Open(s.path(userID))
	if os.IsNotExist(err) {
		return stockfolio.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger for %q: %w", userID, err)
	}
	defer f.Close()

	ledger, err := decodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ledger for %q: %w", userID, err)
	}
	return ledger, nil
}

func (s *FileStore) Save(userID string, ledger *stockfolio.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	// write to a temp file first, then rename: a crash mid-write never
	// leaves a truncated ledger behind.
	target := s.path(userID)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp*")
	if err != nil {
		return fmt.Errorf("cannot create temp ledger file: %w", err)
	}
	if err := encodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write ledger for %q: %w", userID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot replace ledger for %q: %w", userID, err)
	}
	return nil
}

func (s *FileStore) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	err := os.Remove(s.path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot delete ledger for %q: %w", userID, err)
	}
	return nil
}

func (s *FileStore) Users() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot scan store directory: %w", err)
	}
	var users []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		users = append(users, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(users)
	return users, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// decodeLedger reads transactions from a JSONL stream, one per line, in
// arrival order. Empty lines are skipped.
func decodeLedger(r io.Reader) (*stockfolio.Ledger, error) {
	ledger := stockfolio.NewLedger()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var tx stockfolio.Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("bad ledger line %q: %w", string(line), err)
		}
		ledger.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// encodeLedger writes transactions as JSONL in arrival order.
func encodeLedger(w io.Writer, ledger *stockfolio.Ledger) error {
	for _, tx := range ledger.Slice() {
		data, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("cannot marshal transaction %q: %w", tx.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write transaction %q: %w", tx.ID, err)
		}
	}
	return nil
}

var _ Store = (*FileStore)(nil)
