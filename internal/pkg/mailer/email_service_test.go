package mailer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"companion-counselling-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m...)
	return nil
}

func TestSendBookingRequested(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmailServiceWithSender(sender, "noreply@companion.test", "Companion", logger.NewNopLogger())

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, svc.SendBookingRequested("dr@companion.test", "Ada <Lovelace>", at))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, []string{"dr@companion.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Companion <noreply@companion.test>"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "Mar 14, 2025 09:30")
	assert.Contains(t, body, "Ada &lt;Lovelace&gt;")
}

func TestSendBookingRequestedPropagatesError(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewEmailServiceWithSender(sender, "noreply@companion.test", "", logger.NewNopLogger())

	err := svc.SendBookingRequested("dr@companion.test", "Ada", time.Now())
	assert.EqualError(t, err, "smtp down")
}
