// Package mailmsg extracts task fields from RFC 5322 message files.
package mailmsg

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // non-UTF-8 bodies
	"github.com/emersion/go-message/mail"
	"github.com/k3a/html2text"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// Extensions lists the message file extensions ParseFile understands.
var Extensions = []string{".eml"}

// maxBody caps how much of a body part is read.
const maxBody = 1 << 20

var blankRe = regexp.MustCompile(`\n{3,}`)

// Supported reports whether path is a message file ParseFile can read.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ParseFile reads one .eml file. The file's base name becomes the
// message's source identifier.
func ParseFile(path string) (task.Message, error) {
	if !Supported(path) {
		return task.Message{}, clierr.Newf(clierr.UnsupportedFile,
			"unsupported message file %s", filepath.Base(path)).
			WithDetails(map[string]any{"file": path, "supported": Extensions})
	}
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return task.Message{}, fmt.Errorf("opening message: %w", err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path))
}

// Parse reads a message from r. Plain text parts are preferred for the
// body; HTML is used with tags stripped when there is no plain part.
func Parse(r io.Reader, name string) (task.Message, error) {
	log := logging.Component("mailmsg")

	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return task.Message{}, fmt.Errorf("parsing message %s: %w", name, err)
	}
	defer mr.Close()

	msg := task.Message{SourceName: name}
	h := mr.Header
	if msg.Subject, err = h.Subject(); err != nil {
		msg.Subject = h.Get("Subject")
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		msg.Sender = from[0].Address
	} else {
		msg.Sender = strings.TrimSpace(h.Get("From"))
	}
	if d, err := h.Date(); err == nil {
		msg.ReceivedAt = d
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return task.Message{}, fmt.Errorf("reading part of %s: %w", name, err)
		}
		if p == nil {
			continue
		}

		switch ph := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := ph.ContentType()
			body, err := io.ReadAll(io.LimitReader(p.Body, maxBody))
			if err != nil {
				log.Warn().Err(err).Str("file", name).Msg("unreadable body part")
				continue
			}
			switch {
			case ct == "text/plain" && plain == "":
				plain = string(body)
			case ct == "text/html" && html == "":
				html = string(body)
			case ct == "" && plain == "":
				plain = string(body)
			}
		case *mail.AttachmentHeader:
			filename, err := ph.Filename()
			if err != nil || filename == "" {
				filename = attachmentFallback(ph)
			}
			msg.Attachments = append(msg.Attachments, filename)
		}
	}

	msg.Body = strings.TrimSpace(plain)
	if msg.Body == "" && html != "" {
		msg.Body = stripHTML(html)
	}
	log.Debug().Str("file", name).Str("sender", msg.Sender).
		Int("attachments", len(msg.Attachments)).Msg("message parsed")
	return msg, nil
}

func attachmentFallback(h *mail.AttachmentHeader) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil && params["name"] != "" {
		return params["name"]
	}
	return "(unnamed attachment)"
}

func stripHTML(s string) string {
	text := html2text.HTML2TextWithOptions(s, html2text.WithUnixLineBreaks())
	return strings.TrimSpace(blankRe.ReplaceAllString(text, "\n\n"))
}
