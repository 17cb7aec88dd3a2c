package state

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/automerge/automerge-go"
)

// TextKey is the root key holding the shared automerge Text.
const TextKey = "text"

// SharedText is a text buffer replicated through an automerge document.
// It is safe for concurrent use; listeners run outside the lock.
type SharedText struct {
	mu        sync.Mutex
	doc       *automerge.Doc
	listeners map[uint64]func()
	nextID    uint64
}

// NewSharedText creates a document holding an empty text. Only the peer that
// seeds a room should call it; everyone else loads the seeded document so
// all replicas edit the same Text object.
func NewSharedText(actor string) (*SharedText, error) {
	doc := automerge.New()
	if err := setActor(doc, actor); err != nil {
		return nil, err
	}
	if err := doc.Path(TextKey).Set(automerge.NewText("")); err != nil {
		return nil, fmt.Errorf("failed to seed text: %w", err)
	}
	if _, err := doc.Commit("seed", automerge.CommitOptions{AllowEmpty: true}); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}
	return newSharedText(doc), nil
}

// LoadSharedText restores a document saved with Save.
func LoadSharedText(raw []byte, actor string) (*SharedText, error) {
	doc, err := automerge.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load doc: %w", err)
	}
	if err := setActor(doc, actor); err != nil {
		return nil, err
	}
	return newSharedText(doc), nil
}

func newSharedText(doc *automerge.Doc) *SharedText {
	return &SharedText{doc: doc, listeners: make(map[uint64]func())}
}

func setActor(doc *automerge.Doc, actor string) error {
	if actor == "" {
		return nil
	}
	if err := doc.SetActorID(actor); err != nil {
		return fmt.Errorf("failed to set actor %q: %w", actor, err)
	}
	return nil
}

// ActorID returns the hex actor id of the local replica.
func (s *SharedText) ActorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ActorID()
}

// CurrentText returns the current buffer content.
func (s *SharedText) CurrentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *SharedText) currentLocked() string {
	v, err := s.doc.Path(TextKey).Text().Get()
	if err != nil {
		return ""
	}
	return v
}

// ReplaceText swaps the whole buffer for text in one commit. Replacing the
// buffer with identical content does nothing.
func (s *SharedText) ReplaceText(text string) error {
	s.mu.Lock()
	changed, err := s.replaceLocked(text)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.notify()
	}
	return nil
}

func (s *SharedText) replaceLocked(text string) (bool, error) {
	t := s.doc.Path(TextKey).Text()
	cur, err := t.Get()
	if err != nil {
		// no text object yet
		if err := s.doc.Path(TextKey).Set(automerge.NewText(text)); err != nil {
			return false, fmt.Errorf("failed to create text: %w", err)
		}
	} else {
		if cur == text {
			return false, nil
		}
		if n := utf8.RuneCountInString(cur); n > 0 {
			if err := t.Delete(0, n); err != nil {
				return false, fmt.Errorf("failed to delete text: %w", err)
			}
		}
		if err := t.Insert(0, text); err != nil {
			return false, fmt.Errorf("failed to insert text: %w", err)
		}
	}
	if _, err := s.doc.Commit("replace text"); err != nil {
		slog.Debug("commit after replace", "err", err)
	}
	return true, nil
}

// OnChange registers cb to run whenever the buffer changes, including after
// the caller's own ReplaceText. The returned function removes it and may be
// called more than once.
func (s *SharedText) OnChange(cb func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *SharedText) notify() {
	s.mu.Lock()
	cbs := make([]func(), 0, len(s.listeners))
	for _, cb := range s.listeners {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// Save serialises the whole document.
func (s *SharedText) Save() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Save()
}

// Heads returns the hashes of the document's current heads.
func (s *SharedText) Heads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return headStrings(s.doc)
}

func headStrings(doc *automerge.Doc) []string {
	heads := doc.Heads()
	out := make([]string, len(heads))
	for i, h := range heads {
		out[i] = h.String()
	}
	return out
}

// NewSyncState starts a sync session with one remote peer.
func (s *SharedText) NewSyncState() *automerge.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return automerge.NewSyncState(s.doc)
}

// GenerateMessage returns the next message for the peer behind ss, if any.
func (s *SharedText) GenerateMessage(ss *automerge.SyncState) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, valid := ss.GenerateMessage()
	if !valid || msg == nil {
		return nil, false
	}
	return msg.Bytes(), true
}

// ReceiveMessage applies a message from the peer behind ss and notifies
// listeners if it moved the document.
func (s *SharedText) ReceiveMessage(ss *automerge.SyncState, msg []byte) error {
	s.mu.Lock()
	before := strings.Join(headStrings(s.doc), ",")
	_, err := ss.ReceiveMessage(msg)
	after := strings.Join(headStrings(s.doc), ",")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to receive message: %w", err)
	}
	if before != after {
		s.notify()
	}
	return nil
}
