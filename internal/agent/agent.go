// Package agent implements the three-persona tutor built on the student
// store and an OpenAI-compatible LLM: the Architect designs learning
// roadmaps, the Sage explains concepts with text, the Maestro explains
// them with video. All three share one conversation history per student.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/edulga/edulga/internal/engine"
	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

// Persona selects which tutor answers a request.
type Persona string

const (
	PersonaArchitect Persona = "Architect"
	PersonaSage      Persona = "Sage"
	PersonaMaestro   Persona = "Maestro"
)

// ErrEmptyRequest is returned by Ask when the student request is blank.
var ErrEmptyRequest = errors.New("empty student request")

// ErrUnknownPersona is returned by Ask for personas outside the triumvirate.
var ErrUnknownPersona = errors.New("unknown persona")

// Completer is the single LLM operation the tutor needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// llmCompleter adapts the go-kit client, whose Complete takes variadic
// chat options, to the Completer interface.
type llmCompleter struct{ c *llm.Client }

func (a llmCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return a.c.Complete(ctx, system, prompt)
}

// Tutor answers student requests as one of the three personas. Safe for
// concurrent use.
type Tutor struct {
	llm     Completer
	store   students.Store
	chatDir string

	mu       sync.Mutex // guards transcript files and the request counter
	requests int
}

// New builds a tutor over the given store. A nil client disables Ask
// but keeps Forget and RefreshProfile working; an empty chatDir
// disables markdown transcripts.
func New(client *llm.Client, store students.Store, chatDir string) *Tutor {
	t := &Tutor{store: store, chatDir: chatDir}
	if client != nil {
		t.llm = llmCompleter{c: client}
	}
	return t
}

// Reply is the agent response returned to API callers.
type Reply struct {
	StudentID   uuid.UUID `json:"studentId"`
	StudentName string    `json:"studentName"`
	Persona     Persona   `json:"persona"`
	Answer      string    `json:"answer"`
	// HistoryLength counts request/response turns, excluding the system
	// prompt and the profile message.
	HistoryLength  int     `json:"historyLength"`
	LatencySeconds float64 `json:"latencySeconds"`
}

// Ask sends one student request to a persona and returns the reply. On
// first contact the conversation is seeded with the persona's system
// prompt and the student profile. The seeded persona keeps the system
// slot; later requests from sibling personas ride on the shared history.
func (t *Tutor) Ask(ctx context.Context, persona Persona, studentID uuid.UUID, request string) (*Reply, error) {
	start := time.Now()

	request = strings.TrimSpace(request)
	if request == "" {
		return nil, ErrEmptyRequest
	}
	// Cap what a single turn can add to the prompt and the stored history.
	request = engine.TruncateRunes(request, 8000, "")
	system := systemPrompt(persona)
	if system == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, persona)
	}
	if t.llm == nil {
		return nil, fmt.Errorf("agent: %w: LLM_API_KEY", engine.ErrNotConfigured)
	}

	s, err := t.store.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	history, err := t.store.History(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		history = []students.ChatMessage{
			{Role: students.RoleSystem, Content: system},
			{Role: students.RoleUser, Content: s.ProfileMessage()},
		}
	}
	history = append(history, students.ChatMessage{Role: students.RoleUser, Content: request})

	engine.IncrLLMCalls()
	answer, err := t.llm.Complete(ctx, history[0].Content, renderConversation(history[1:]))
	if err != nil {
		engine.IncrLLMErrors()
		return nil, fmt.Errorf("agent: %s: %w", persona, err)
	}
	answer = strings.TrimSpace(answer)
	history = append(history, students.ChatMessage{Role: students.RoleAssistant, Content: answer})

	if err := t.store.PutHistory(ctx, studentID, history); err != nil {
		slog.Warn("tutor history not persisted",
			slog.String("student", s.Name),
			slog.Any("error", err),
		)
	}
	if err := t.appendTranscript(s, persona, request, answer); err != nil {
		slog.Warn("tutor transcript not written",
			slog.String("student", s.Name),
			slog.Any("error", err),
		)
	}

	elapsed := time.Since(start)
	slog.Info("tutor reply",
		slog.String("persona", string(persona)),
		slog.String("student", s.Name),
		slog.Int("history", len(history)-2),
		slog.Duration("elapsed", elapsed),
	)
	return &Reply{
		StudentID:      studentID,
		StudentName:    s.Name,
		Persona:        persona,
		Answer:         answer,
		HistoryLength:  len(history) - 2,
		LatencySeconds: elapsed.Seconds(),
	}, nil
}

// Forget drops a student's conversation state: the stored history and
// the markdown transcript. Call it before removing the student record,
// while the transcript file name can still be derived.
func (t *Tutor) Forget(ctx context.Context, s *students.Student) error {
	if err := t.store.DeleteHistory(ctx, s.ID); err != nil {
		return err
	}
	return t.removeTranscript(s)
}

// RefreshProfile rewrites the stored profile message after the student
// record changes (an upgrade bumps age, grades and GPA). A student who
// never chatted has nothing to refresh.
func (t *Tutor) RefreshProfile(ctx context.Context, s *students.Student) error {
	history, err := t.store.History(ctx, s.ID)
	if err != nil || len(history) < 2 {
		return err
	}
	history[1] = students.ChatMessage{Role: students.RoleUser, Content: s.ProfileMessage()}
	return t.store.PutHistory(ctx, s.ID, history)
}

// systemPrompt assembles the system message for a persona. The
// Architect works standalone; Sage and Maestro are prefixed with the
// shared team charter. Unknown personas yield "".
func systemPrompt(p Persona) string {
	switch p {
	case PersonaArchitect:
		return architectPrompt
	case PersonaSage:
		return teamCharter + "\n\n" + sagePrompt
	case PersonaMaestro:
		return teamCharter + "\n\n" + maestroPrompt
	default:
		return ""
	}
}

// renderConversation flattens stored turns into a single prompt for the
// completion call, ending with a cue for the tutor's next turn. The
// system message is passed separately and never rendered here.
func renderConversation(msgs []students.ChatMessage) string {
	var sb strings.Builder
	for _, m := range msgs {
		if m.Role == students.RoleAssistant {
			sb.WriteString("Tutor:\n")
		} else {
			sb.WriteString("Student:\n")
		}
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Tutor:")
	return sb.String()
}
