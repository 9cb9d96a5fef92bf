package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tezbot/app/activity"
	"tezbot/app/config"
	"tezbot/app/store"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const (
	defaultContextLimit = 8
	// Only the most recent lines of the rendered window are joined
	// into the prompt context.
	contextJoinWindow = 6
	// Assistant lines are truncated to keep prompts small
	assistantPreviewRunes = 200
)

// Store is the durable record store. The service is its sole writer.
type Store interface {
	Load() (map[int64]json.RawMessage, error)
	Save(map[int64]json.RawMessage) error
}

// Service owns one State per user: bounded history, the single active
// activity, persona selection and the persistence round trip. Save
// errors are logged and swallowed, the in-memory state stays
// authoritative for the rest of the process lifetime.
type Service struct {
	cfg   *config.Config
	store Store

	mu     sync.RWMutex
	states map[int64]*State

	turnMu sync.Mutex
	turns  map[int64]*sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	fileStore, err := store.NewFile(cfg.Session.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return NewWithStore(cfg, fileStore)
}

func NewWithStore(cfg *config.Config, st Store) (*Service, error) {
	records, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	states := make(map[int64]*State, len(records))
	for userID, record := range records {
		states[userID] = decodeRecord(userID, record)
	}

	if len(states) > 0 {
		slog.Info("Loaded sessions", "users", len(states))
	}

	return &Service{
		cfg:    cfg,
		store:  st,
		states: states,
		turns:  make(map[int64]*sync.Mutex),
	}, nil
}

// decodeRecord never rejects a record: a shape this build cannot parse
// is loaded without its activity sub-structure instead (lazy forward
// migration for states persisted by older builds).
func decodeRecord(userID int64, record json.RawMessage) *State {
	var state State
	if err := json.Unmarshal(record, &state); err == nil {
		return &state
	}

	type bareState struct {
		Messages       []Message `json:"messages"`
		CreatedAt      time.Time `json:"created_at"`
		LastUpdatedAt  time.Time `json:"last_updated"`
		TotalMessages  int       `json:"total_messages"`
		CurrentPersona string    `json:"current_persona"`
	}

	var bare bareState
	if err := json.Unmarshal(record, &bare); err != nil {
		slog.Warn("Discarding unreadable session record", "user_id", userID, "error", err)
		return newState()
	}

	slog.Warn("Patched session record with default activity state", "user_id", userID)

	return &State{
		Messages:       bare.Messages,
		CreatedAt:      bare.CreatedAt,
		LastUpdatedAt:  bare.LastUpdatedAt,
		TotalMessages:  bare.TotalMessages,
		CurrentPersona: bare.CurrentPersona,
	}
}

func newState() *State {
	now := time.Now()
	return &State{
		Messages:      []Message{},
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// LockUser serializes turns of a single user; messages of distinct
// users still process concurrently. The caller must invoke the
// returned unlock when the turn completes.
func (s *Service) LockUser(userID int64) func() {
	s.turnMu.Lock()
	mu, ok := s.turns[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.turns[userID] = mu
	}
	s.turnMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Service) getOrCreateLocked(userID int64) *State {
	state, ok := s.states[userID]
	if !ok {
		state = newState()
		s.states[userID] = state
		slog.Info("Created session", "user_id", userID)
	}
	return state
}

// GetOrCreate returns a snapshot of the user's state, creating a fresh
// one on first contact. Mutations go through the service methods only.
func (s *Service) GetOrCreate(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot(s.getOrCreateLocked(userID))
}

func snapshot(state *State) State {
	out := *state
	out.Messages = append([]Message(nil), state.Messages...)
	if state.Activity != nil {
		act := *state.Activity
		out.Activity = &act
	}
	return out
}

// AppendMessage records a turn, bumps the lifetime counter, trims the
// retained window and persists.
func (s *Service) AppendMessage(userID int64, role Role, content string, kind MessageKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.getOrCreateLocked(userID)
	now := time.Now()

	state.Messages = append(state.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Kind:      kind,
	})
	state.TotalMessages++
	state.LastUpdatedAt = now

	if bound := s.cfg.Session.MaxHistory; len(state.Messages) > bound {
		state.Messages = state.Messages[len(state.Messages)-bound:]
	}

	s.persistLocked()
}

// Context renders the recent history as a transcript for prompting.
// Empty history yields an empty string.
func (s *Service) Context(userID int64, limit int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok || len(state.Messages) == 0 {
		return ""
	}

	if limit <= 0 {
		limit = defaultContextLimit
	}

	recent := state.Messages
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	lines := pie.Map(recent, renderContextLine)
	if len(lines) > contextJoinWindow {
		lines = lines[len(lines)-contextJoinWindow:]
	}

	return strings.Join(lines, "\n")
}

func renderContextLine(msg Message) string {
	if msg.Kind == KindCommand {
		return fmt.Sprintf("[Command: %s]", msg.Content)
	}
	if msg.Role == RoleUser {
		return "User: " + msg.Content
	}

	content := msg.Content
	if runes := []rune(content); len(runes) > assistantPreviewRunes {
		content = string(runes[:assistantPreviewRunes])
	}
	return "AI: " + content + "..."
}

// SetActivity replaces any prior activity, there is at most one per
// user.
func (s *Service) SetActivity(userID int64, kind activity.Kind, payload activity.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.getOrCreateLocked(userID)
	now := time.Now()

	state.Activity = &activity.State{
		Kind:      kind,
		Payload:   payload,
		StartedAt: now,
	}
	state.LastUpdatedAt = now

	s.persistLocked()
}

// Activity returns the active activity, nil when there is none.
func (s *Service) Activity(userID int64) *activity.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok || state.Activity == nil {
		return nil
	}

	act := *state.Activity
	return &act
}

// UpdateActivityPayload swaps the payload of the active activity
// without touching its kind or start time. No-op when nothing is
// active.
func (s *Service) UpdateActivityPayload(userID int64, payload activity.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok || state.Activity == nil {
		return
	}

	state.Activity.Payload = payload
	state.LastUpdatedAt = time.Now()

	s.persistLocked()
}

func (s *Service) ClearActivity(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok || state.Activity == nil {
		return
	}

	state.Activity = nil
	state.LastUpdatedAt = time.Now()

	s.persistLocked()
}

func (s *Service) SetPersona(userID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.getOrCreateLocked(userID)
	state.CurrentPersona = name
	state.LastUpdatedAt = time.Now()

	s.persistLocked()
}

func (s *Service) Persona(userID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return ""
	}
	return state.CurrentPersona
}

func (s *Service) Stats(userID int64) Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.getOrCreateLocked(userID)

	return Statistics{
		TotalMessages:   state.TotalMessages,
		CurrentMessages: len(state.Messages),
		CreatedAt:       state.CreatedAt,
		LastUpdatedAt:   state.LastUpdatedAt,
		Duration:        state.LastUpdatedAt.Sub(state.CreatedAt),
	}
}

// ClearAll removes the whole state, not a reset to defaults. Reports
// whether a state existed.
func (s *Service) ClearAll(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[userID]; !ok {
		return false
	}

	delete(s.states, userID)
	s.persistLocked()

	slog.Info("Cleared session", "user_id", userID)

	return true
}

// CleanupStale evicts messages older than the configured age across
// all users and reports how many users were affected. Persists only
// when something changed.
func (s *Service) CleanupStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(s.cfg.Session.MaxAgeHours) * time.Hour)

	changed := 0
	for _, state := range s.states {
		kept := pie.Filter(state.Messages, func(msg Message) bool {
			return msg.Timestamp.After(cutoff)
		})

		if len(kept) < len(state.Messages) {
			state.Messages = kept
			changed++
		}
	}

	if changed > 0 {
		s.persistLocked()
		slog.Info("Evicted stale messages", "users", changed)
	}

	return changed
}

func (s *Service) persistLocked() {
	records := make(map[int64]json.RawMessage, len(s.states))

	for userID, state := range s.states {
		data, err := json.Marshal(state)
		if err != nil {
			slog.Error("Failed to marshal session", "user_id", userID, "error", err)
			continue
		}
		records[userID] = data
	}

	if err := s.store.Save(records); err != nil {
		slog.Error("Failed to persist sessions", "error", err)
	}
}
