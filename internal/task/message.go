package task

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

// Message is the field set extracted from one message file.
type Message struct {
	SourceName  string
	Subject     string
	Sender      string
	Body        string
	ReceivedAt  time.Time
	Attachments []string
}

// ClassifyPriority scans subject and body for urgency keywords:
// "urgent" or "asap" → Critical, "important" → High, otherwise Medium.
func ClassifyPriority(subject, body string) Priority {
	text := strings.ToLower(subject + " " + body)
	switch {
	case strings.Contains(text, "urgent"), strings.Contains(text, "asap"):
		return PriorityCritical
	case strings.Contains(text, "important"):
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// ImportMessage creates exactly one New, unassigned task from m. The
// message's SourceName is required and identifies it: when it was already
// consumed the earlier task is returned with created=false and nothing
// changes.
func (s *Store) ImportMessage(m Message) (*Task, bool, error) {
	name := strings.TrimSpace(m.SourceName)
	if name == "" {
		return nil, false, clierr.New(clierr.ValidationFailed, "message source name is required").
			WithDetails(map[string]any{"field": "source"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.consumed(name); ok {
		s.log.Info().Str("source", name).Msg("message already imported")
		for _, id := range r.TaskIDs {
			if t, ok := s.byID[id]; ok {
				return t.Clone(), false, nil
			}
		}
		return nil, false, nil
	}

	tag := sourceTag("Email", name)
	t, err := s.create(NewTask{
		Title:       messageTitle(m),
		Priority:    ClassifyPriority(m.Subject, m.Body),
		Status:      StatusNew,
		AssignedTo:  Unassigned,
		CreatedAt:   m.ReceivedAt,
		Description: messageDescription(m),
		Source:      tag,
	})
	if err != nil {
		return nil, false, err
	}

	s.sources[name] = SourceReceipt{
		Source:     name,
		Kind:       "message",
		TaskIDs:    []int{t.ID},
		ImportedAt: s.now(),
	}
	s.log.Info().Int("task_id", t.ID).Str("source", tag).Str("priority", string(t.Priority)).
		Msg("message imported")
	return t.Clone(), true, nil
}

func messageTitle(m Message) string {
	if subj := strings.TrimSpace(m.Subject); subj != "" {
		return subj
	}
	if sender := strings.TrimSpace(m.Sender); sender != "" {
		return "Email from " + sender
	}
	return "(no subject)"
}

func messageDescription(m Message) string {
	var b strings.Builder
	if m.Sender != "" {
		b.WriteString("From: " + m.Sender + "\n\n")
	}
	b.WriteString(strings.TrimSpace(m.Body))
	if len(m.Attachments) > 0 {
		b.WriteString("\n\nAttachments: " + strings.Join(m.Attachments, ", "))
	}
	return b.String()
}
