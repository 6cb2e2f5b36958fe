package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaivisachecklist/server/internal/email"
)

type recordingMailer struct {
	sent []email.ContactMessage
	err  error
}

func (m *recordingMailer) SendContactMessage(_ context.Context, msg email.ContactMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newTestService(m Mailer) *Service {
	svc := NewService(m, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, time.October, 16, 2, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_SubmitJSON_SendsOnce(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	receipt, err := svc.SubmitJSON(context.Background(),
		[]byte(`{"name":"<b>Nok</b>","email":"nok@example.com","message":"line1\nline2"}`))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	got := mailer.sent[0]
	assert.Equal(t, receipt.ID, got.ID)
	assert.Equal(t, "<b>Nok</b>", got.Name, "escaping happens at render time")
	assert.Equal(t, "line1\nline2", got.Message)

	parsed, err := ulid.ParseStrict(receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.now().UnixMilli(), int64(parsed.Time()))
}

func TestService_SubmitJSON_InvalidNeverSends(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	_, err := svc.SubmitJSON(context.Background(),
		[]byte(`{"name":"`+strings.Repeat("n", 101)+`","email":"a@b.co","message":"x"}`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid name", verr.Error())
	assert.Empty(t, mailer.sent)

	_, err = svc.SubmitJSON(context.Background(),
		[]byte(`{"name":"A","email":"not-a-email","message":"x"}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid email address", verr.Error())
	assert.Empty(t, mailer.sent)
}

func TestService_Submit_DeliveryFailure(t *testing.T) {
	upstream := errors.New("resend down")
	mailer := &recordingMailer{err: upstream}
	svc := newTestService(mailer)

	_, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})

	require.ErrorIs(t, err, ErrDelivery)
	assert.ErrorIs(t, err, upstream)
	assert.Len(t, mailer.sent, 1)
}

func TestService_IDsAreMonotonic(t *testing.T) {
	svc := newTestService(&recordingMailer{})

	first, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})
	require.NoError(t, err)

	assert.Less(t, first.ID, second.ID)
}
