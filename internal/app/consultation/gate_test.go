package consultation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/adapters/storage/memory"
	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/locale"
)

type echoAdvisor struct{}

func (echoAdvisor) AnswerQuestion(_ context.Context, q string, _ domain.Language) (string, error) {
	return q, nil
}

func (echoAdvisor) AnalyzeDisease(_ context.Context, _ domain.Image, q string, _ domain.Language) (string, error) {
	return q, nil
}

func (echoAdvisor) AnalyzeMarket(_ context.Context, c string, _ domain.Language) (string, error) {
	return c, nil
}

func (echoAdvisor) LookupSchemes(_ context.Context, q string, _ domain.Language) (string, error) {
	return q, nil
}

func gateCount(s *Service) int {
	s.gatesMu.Lock()
	defer s.gatesMu.Unlock()
	return len(s.gates)
}

func TestGatesAreReleasedAfterSubmit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(echoAdvisor{}, memory.NewSessionStore(), memory.NewConsultationStore(), locale.MustLoad())

	for i := 0; i < 5; i++ {
		sess, err := svc.StartSession(ctx, StartSessionInput{})
		require.NoError(t, err)
		_, err = svc.SubmitTextQuery(ctx, TextQueryInput{SessionID: sess.ID, Question: "q"})
		require.NoError(t, err)
	}

	assert.Zero(t, gateCount(svc))
}

func TestGateKeptWhileWaiterPending(t *testing.T) {
	svc := NewService(echoAdvisor{}, memory.NewSessionStore(), memory.NewConsultationStore(), locale.MustLoad())

	release, err := svc.acquire(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, gateCount(svc))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.acquire(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, gateCount(svc), "holder still owns the gate")

	release()
	assert.Zero(t, gateCount(svc))

	// a fresh gate is usable after the old one was dropped
	release, err = svc.acquire(context.Background(), "s1")
	require.NoError(t, err)
	release()
	assert.Zero(t, gateCount(svc))
}
