package mailmsg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const multipartEML = `From: Jane Analyst <jane@bank.test>
To: ops@bank.test
Subject: URGENT: lien release
Date: Mon, 06 May 2024 14:30:00 +0000
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="XYZ"

--XYZ
Content-Type: text/plain; charset=utf-8

Please handle the release asap.
--XYZ
Content-Type: application/pdf
Content-Disposition: attachment; filename="lien.pdf"

JVBERi0=
--XYZ--
`

const htmlEML = `From: ops@bank.test
Subject: Weekly numbers
Content-Type: text/html; charset=utf-8

<p>Totals are <b>attached</b> &amp; reviewed.</p>
`

const styledEML = `From: ops@bank.test
Subject: Filing reminder
Content-Type: text/html; charset=utf-8

<html><head><style>p { color: red; }</style></head><body><script>track()</script><p>Don&#39;t miss the UCC filing.</p></body></html>
`

func TestParseMultipart(t *testing.T) {
	msg, err := Parse(strings.NewReader(multipartEML), "lien.eml")
	require.NoError(t, err)

	assert.Equal(t, "lien.eml", msg.SourceName)
	assert.Equal(t, "URGENT: lien release", msg.Subject)
	assert.Equal(t, "jane@bank.test", msg.Sender)
	assert.Equal(t, "Please handle the release asap.", msg.Body)
	assert.True(t, msg.ReceivedAt.Equal(time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, []string{"lien.pdf"}, msg.Attachments)
	assert.Equal(t, task.PriorityCritical, task.ClassifyPriority(msg.Subject, msg.Body))
}

func TestParseHTMLOnly(t *testing.T) {
	msg, err := Parse(strings.NewReader(htmlEML), "weekly.eml")
	require.NoError(t, err)
	assert.Equal(t, "ops@bank.test", msg.Sender)
	assert.Equal(t, "Totals are attached & reviewed.", msg.Body)
	assert.True(t, msg.ReceivedAt.IsZero())
	assert.Empty(t, msg.Attachments)
}

func TestParseHTMLDropsStyleAndScript(t *testing.T) {
	msg, err := Parse(strings.NewReader(styledEML), "reminder.eml")
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Don't miss the UCC filing.")
	assert.NotContains(t, msg.Body, "color")
	assert.NotContains(t, msg.Body, "track()")
	assert.NotContains(t, msg.Body, "<")
}

func TestParseFileFeedsStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lien.eml")
	require.NoError(t, os.WriteFile(path, []byte(multipartEML), 0o600))

	msg, err := ParseFile(path)
	require.NoError(t, err)

	s := task.NewStore()
	tk, created, err := s.ImportMessage(msg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, task.PriorityCritical, tk.Priority)
	assert.Equal(t, "Email:lien.eml", tk.Source)

	_, created, err = s.ImportMessage(msg)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := ParseFile("inbox/outlook.msg")
	assert.True(t, clierr.HasCode(err, clierr.UnsupportedFile))
}
