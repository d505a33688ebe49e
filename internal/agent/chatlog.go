package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edulga/edulga/internal/students"
	"github.com/google/uuid"
)

// transcriptPath builds the per-student markdown file name,
// <Name_With_Underscores>_Chat_<uuid>.md.
func transcriptPath(dir, name string, id uuid.UUID) string {
	return filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+"_Chat_"+id.String()+".md")
}

// appendTranscript writes one request/response block to the student's
// markdown chat log, creating the file with a header on first write.
// The request number runs across all personas and students.
func (t *Tutor) appendTranscript(s *students.Student, persona Persona, request, answer string) error {
	if t.chatDir == "" {
		return nil
	}
	if err := os.MkdirAll(t.chatDir, 0750); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++

	f, err := os.OpenFile(transcriptPath(t.chatDir, s.Name, s.ID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		fmt.Fprintf(f, "# Chat Log for %s\n\n**Student ID:** %s\n\n---\n\n", s.Name, s.ID)
	}
	fmt.Fprintf(f, "## Request %d (%s)\n\n**Student:**\n\n%s\n\n**%s:**\n\n%s\n\n---\n\n",
		t.requests, persona, request, persona, answer)
	return f.Sync()
}

// removeTranscript deletes the student's chat log file. Missing files
// are fine; a student may never have chatted.
func (t *Tutor) removeTranscript(s *students.Student) error {
	if t.chatDir == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.Remove(transcriptPath(t.chatDir, s.Name, s.ID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
