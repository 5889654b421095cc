package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TrapWireAI/lurebox/pkg/intel"
	"github.com/TrapWireAI/lurebox/pkg/logger"
	"github.com/TrapWireAI/lurebox/pkg/persona"
)

// PoliteDecline is the reply for messages that are not classified as scams.
// The honeypot only engages confirmed scam conversations.
const PoliteDecline = "I am not interested. Please do not contact me again."

const (
	responseTemperature = 0.8
	responseMaxTokens   = 200
	historyWindow       = 6
)

// Generator produces a persona reply from a prompt. Implemented by
// llm.Client.
type Generator interface {
	Generate(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error)
}

// Options bound how long a conversation is kept alive.
type Options struct {
	// MaxTurns is a hard cap on honeypot replies per conversation.
	MaxTurns int
	// MinTurnsBeforeClose is the minimum engagement before a conversation
	// with complete intelligence may wind down.
	MinTurnsBeforeClose int
}

// DefaultOptions mirror the config defaults.
func DefaultOptions() Options {
	return Options{
		MaxTurns:            20,
		MinTurnsBeforeClose: 5,
	}
}

// Engine runs the honeypot side of a conversation.
type Engine struct {
	store Store
	gen   Generator
	opts  Options
	log   *logger.Logger
}

// NewEngine builds an engine over a state store and response generator.
func NewEngine(store Store, gen Generator, opts Options, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultOptions().MaxTurns
	}
	if opts.MinTurnsBeforeClose <= 0 {
		opts.MinTurnsBeforeClose = DefaultOptions().MinTurnsBeforeClose
	}
	return &Engine{
		store: store,
		gen:   gen,
		opts:  opts,
		log:   log.WithComponent("dialog"),
	}
}

// State loads the current state of a conversation. Returns nil, nil when
// the conversation is unknown.
func (e *Engine) State(ctx context.Context, conversationID string) (*State, error) {
	return e.store.Get(ctx, conversationID)
}

// Respond advances a scam conversation by one turn: locks the persona on
// first contact, merges newly extracted intelligence into the running
// snapshot, generates an in-character reply, and persists the state.
//
// The persona is chosen once, on the first scam turn, and never
// re-evaluated afterwards even if later messages suggest a different one.
func (e *Engine) Respond(ctx context.Context, conversationID, message string, history []string, category string, extracted *intel.Snapshot) (string, *State, error) {
	state, err := e.store.Get(ctx, conversationID)
	if err != nil {
		return "", nil, fmt.Errorf("load conversation state: %w", err)
	}
	if state == nil {
		state = NewState(conversationID)
	}

	if !state.PersonaLocked {
		state.Persona = persona.Select(category, message)
		state.PersonaLocked = true
		e.log.Info().
			Str("conversation_id", conversationID).
			Str("persona", string(state.Persona)).
			Str("category", category).
			Msg("persona selected")
	}

	state.TurnCount++
	state.LastActivityAt = time.Now()
	if state.Intelligence == nil {
		state.Intelligence = intel.NewSnapshot()
	}
	state.Intelligence.Merge(extracted)

	def := persona.Lookup(state.Persona)
	system := e.buildSystem(def, state)
	prompt := buildConversationPrompt(message, history)

	reply, err := e.gen.Generate(ctx, prompt, system, responseTemperature, responseMaxTokens)
	if err != nil {
		e.log.Warn().Err(err).
			Str("conversation_id", conversationID).
			Msg("response generation unavailable, using persona fallback")
		reply = fallbackReply(def, state.TurnCount)
	}
	reply = Sanitize(reply)

	if err := e.store.Save(ctx, state); err != nil {
		return "", nil, fmt.Errorf("save conversation state: %w", err)
	}
	return reply, state, nil
}

// ShouldContinue reports whether the honeypot should keep engaging. A
// conversation stops at the turn cap, or once every intelligence category
// is populated and the minimum engagement has been reached.
func (e *Engine) ShouldContinue(state *State) bool {
	if state == nil {
		return true
	}
	if state.TurnCount >= e.opts.MaxTurns {
		return false
	}
	if state.Intelligence != nil && state.Intelligence.Complete() &&
		state.TurnCount >= e.opts.MinTurnsBeforeClose {
		return false
	}
	return true
}

// Reset discards a conversation's state. Resetting an unknown conversation
// is a no-op.
func (e *Engine) Reset(ctx context.Context, conversationID string) error {
	return e.store.Delete(ctx, conversationID)
}

func (e *Engine) buildSystem(def persona.Definition, state *State) string {
	var b strings.Builder
	b.WriteString(persona.BuildSystemPrompt(def))

	if state.Intelligence != nil {
		if missing := state.Intelligence.Missing(); len(missing) > 0 {
			b.WriteString("\n\nYou still need the scammer to reveal: ")
			b.WriteString(strings.Join(missing, "; "))
			b.WriteString(".")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(turnGuidance(state.TurnCount))

	if state.Intelligence != nil && state.Intelligence.Complete() {
		b.WriteString(" You have everything you need; start delaying with excuses and wind the conversation down naturally.")
	}
	return b.String()
}

// turnGuidance shifts the reply strategy as the conversation matures.
func turnGuidance(turn int) string {
	switch {
	case turn <= 1:
		return "This is your first reply. React briefly and naturally to their message."
	case turn == 2:
		return "Ask a simple clarifying question about what they are offering."
	case turn == 3:
		return "Show interest or mild concern, and nudge them toward sharing specifics like payment or contact details."
	case turn <= 5:
		return "Build rapport. Ask directly about payment methods, account numbers, or where to send money."
	case turn <= 10:
		return "Keep them engaged and ask directly for any details they have not shared yet: account numbers, UPI IDs, links, phone numbers."
	default:
		return "The conversation has gone on a long time. Start introducing small delays and excuses while staying in character."
	}
}

// buildConversationPrompt renders the recent exchange. History alternates
// scammer and honeypot messages, oldest first.
func buildConversationPrompt(message string, history []string) string {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	var parts []string
	for i, msg := range recent {
		speaker := "Scammer"
		if i%2 == 1 {
			speaker = "You"
		}
		parts = append(parts, speaker+": "+msg)
	}
	parts = append(parts, "Scammer: "+message, "You:")
	return strings.Join(parts, "\n\n")
}

// fallbackReply picks a canned persona phrase when generation fails, keyed
// off the turn so consecutive failures do not repeat themselves.
func fallbackReply(def persona.Definition, turn int) string {
	if len(def.Phrases) == 0 {
		return "Sorry, can you say that again?"
	}
	return def.Phrases[turn%len(def.Phrases)]
}

// Sanitize strips model framing artifacts from a generated reply: one
// layer of surrounding quotes, leaked speaker prefixes, and a missing
// terminal punctuation mark.
func Sanitize(reply string) string {
	reply = strings.TrimSpace(reply)

	if len(reply) >= 2 {
		first, last := reply[0], reply[len(reply)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			reply = strings.TrimSpace(reply[1 : len(reply)-1])
		}
	}

	for _, prefix := range []string{"Response:", "You:", "AI:", "Assistant:"} {
		if strings.HasPrefix(reply, prefix) {
			reply = strings.TrimSpace(strings.TrimPrefix(reply, prefix))
		}
	}

	if reply == "" {
		return reply
	}
	if !strings.HasSuffix(reply, ".") && !strings.HasSuffix(reply, "!") && !strings.HasSuffix(reply, "?") {
		reply += "."
	}
	return reply
}
