package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/domain"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	sess := &domain.Session{ID: "s1", SelectedLanguage: domain.LanguageEnglish, CreatedAt: time.Now()}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.Error(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEnglish, got.SelectedLanguage)

	// returned sessions are copies
	got.SelectedLanguage = domain.LanguageTamil
	again, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEnglish, again.SelectedLanguage)

	require.NoError(t, store.UpdateSession(ctx, got))
	again, err = store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageTamil, again.SelectedLanguage)

	_, err = store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.UpdateSession(ctx, &domain.Session{ID: "missing"}), domain.ErrSessionNotFound)
}

func TestConsultationStoreKeepsOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewConsultationStore()

	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, store.AppendConsultation(ctx, &domain.ConsultationRecord{
			SessionID: "a", Seq: i, Type: domain.TypeCropQuery, Question: q,
		}))
	}
	require.NoError(t, store.AppendConsultation(ctx, &domain.ConsultationRecord{SessionID: "b", Question: "other"}))

	recs, err := store.ListConsultations(ctx, "a")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "first", recs[0].Question)
	assert.Equal(t, "third", recs[2].Question)

	recs[0].Question = "tampered"
	recs, err = store.ListConsultations(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", recs[0].Question)

	empty, err := store.ListConsultations(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
