package planner

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/dayboard/internal/storage"
)

// MessageTTL is how long a composer status message stays visible.
const MessageTTL = 3 * time.Second

const (
	MsgJournalEmpty      = "Please write something before saving."
	MsgJournalSaved      = "Journal entry saved successfully!"
	MsgJournalSaveFailed = "Failed to save journal entry. Please try again."
)

// ErrEmptyEntry is returned by Save when the draft is blank.
var ErrEmptyEntry = errors.New("journal entry is empty")

// Prompts are the fixed writing prompts offered by PickRandomPrompt.
var Prompts = []string{
	"What are three things you're grateful for today?",
	"Describe a challenge you're currently facing and how you plan to overcome it.",
	"What's a recent accomplishment you're proud of and why?",
	"If you could change one thing about your day today, what would it be?",
	"Write about a person who has positively influenced your life recently.",
	"What's a new skill or hobby you'd like to learn, and why?",
	"Describe your ideal day from start to finish.",
	"What's a fear you'd like to overcome, and what steps can you take to face it?",
	"Write a letter to your future self, one year from now.",
	"What's a recent mistake you've made, and what did you learn from it?",
}

// RandomPrompt returns one of Prompts chosen uniformly at random.
func RandomPrompt() string {
	return Prompts[rand.IntN(len(Prompts))]
}

// Composer holds the journal draft and writes new entries.
type Composer struct {
	store JournalStore
	opts  options

	mu      sync.Mutex
	draft   string
	msg     string
	msgAt   time.Time
	pending bool
}

// NewComposer creates a composer with an empty draft.
func NewComposer(store JournalStore, opts ...Option) *Composer {
	return &Composer{store: store, opts: buildOptions(opts)}
}

// Load places the most recent entry's content into the draft. With no
// entries, or on a read failure, the draft is left empty.
func (c *Composer) Load(ctx context.Context) (storage.JournalEntry, error) {
	e, err := c.store.LatestJournalEntry(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.JournalEntry{}, nil
	}
	if err != nil {
		slog.Error("fetching latest journal entry", "error", err)
		return storage.JournalEntry{}, err
	}

	c.mu.Lock()
	c.draft = e.Content
	c.mu.Unlock()
	return e, nil
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft text.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// PickRandomPrompt replaces the draft with a random prompt and returns it.
func (c *Composer) PickRandomPrompt() string {
	p := RandomPrompt()
	c.SetDraft(p)
	return p
}

// Save inserts the draft as a new journal entry.
func (c *Composer) Save(ctx context.Context) (storage.JournalEntry, error) {
	c.mu.Lock()
	draft := c.draft
	if strings.TrimSpace(draft) == "" {
		c.setMessage(MsgJournalEmpty)
		c.mu.Unlock()
		return storage.JournalEntry{}, ErrEmptyEntry
	}
	c.pending = true
	c.mu.Unlock()

	e, err := c.store.InsertJournalEntry(ctx, storage.JournalEntry{Content: draft})

	c.mu.Lock()
	c.pending = false
	if err != nil {
		slog.Error("saving journal entry", "error", err)
		c.setMessage(MsgJournalSaveFailed)
		c.mu.Unlock()
		return storage.JournalEntry{}, err
	}
	c.setMessage(MsgJournalSaved)
	c.mu.Unlock()

	c.opts.notify()
	return e, nil
}

// Saving reports whether a save is in flight.
func (c *Composer) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Message returns the last status message, or "" once MessageTTL has passed.
func (c *Composer) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.msg == "" || c.opts.clock.Now().Sub(c.msgAt) >= MessageTTL {
		return ""
	}
	return c.msg
}

func (c *Composer) setMessage(msg string) {
	c.msg = msg
	c.msgAt = c.opts.clock.Now()
}
