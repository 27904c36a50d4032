package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/model"
)

type fakeFeedbackStore struct {
	created []model.Feedback
}

func (f *fakeFeedbackStore) Create(_ context.Context, fb *model.Feedback) error {
	f.created = append(f.created, *fb)
	return nil
}

func (f *fakeFeedbackStore) ListByUser(_ context.Context, userID string) ([]model.FeedbackWithDetails, error) {
	var out []model.FeedbackWithDetails
	for _, fb := range f.created {
		if fb.UserID == userID {
			out = append(out, model.FeedbackWithDetails{Feedback: fb})
		}
	}
	return out, nil
}

func (f *fakeFeedbackStore) ListAll(_ context.Context, limit int) ([]model.FeedbackWithDetails, error) {
	out := make([]model.FeedbackWithDetails, 0, len(f.created))
	for _, fb := range f.created {
		out = append(out, model.FeedbackWithDetails{Feedback: fb})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestFeedbackSubmitValid(t *testing.T) {
	store := &fakeFeedbackStore{}
	svc := NewFeedbackService(store)

	fb, err := svc.Submit(context.Background(), "u1", SubmitFeedbackRequest{
		ToiletID:    "t1",
		IssueType:   "bad-smell",
		Rating:      4,
		Cleanliness: 2,
		Comment:     "  smells near the entrance  ",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, "u1", fb.UserID)
	assert.Equal(t, "t1", fb.ToiletID)
	assert.Equal(t, model.IssueType("bad-smell"), fb.IssueType)
	assert.Equal(t, "smells near the entrance", fb.Comment)
	assert.False(t, fb.CreatedAt.IsZero())
}

func TestFeedbackSubmitRejectsInvalid(t *testing.T) {
	store := &fakeFeedbackStore{}
	svc := NewFeedbackService(store)
	ctx := context.Background()

	cases := []struct {
		name string
		req  SubmitFeedbackRequest
	}{
		{"missing issue type", SubmitFeedbackRequest{Rating: 3, Cleanliness: 3}},
		{"unknown issue type", SubmitFeedbackRequest{IssueType: "haunted", Rating: 3, Cleanliness: 3}},
		{"rating zero", SubmitFeedbackRequest{IssueType: "dirty", Cleanliness: 3}},
		{"rating too high", SubmitFeedbackRequest{IssueType: "dirty", Rating: 6, Cleanliness: 3}},
		{"cleanliness zero", SubmitFeedbackRequest{IssueType: "dirty", Rating: 3}},
		{"cleanliness negative", SubmitFeedbackRequest{IssueType: "dirty", Rating: 3, Cleanliness: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, "u1", tc.req)
			assert.ErrorIs(t, err, ErrInvalidFeedback)
		})
	}
	assert.Empty(t, store.created, "invalid feedback must not be persisted")
}

func TestFeedbackCommentOptional(t *testing.T) {
	store := &fakeFeedbackStore{}
	svc := NewFeedbackService(store)

	_, err := svc.Submit(context.Background(), "u1", SubmitFeedbackRequest{
		IssueType:   "no-water",
		Rating:      1,
		Cleanliness: 1,
	})
	require.NoError(t, err)
}

func TestFeedbackMineFiltersByUser(t *testing.T) {
	store := &fakeFeedbackStore{}
	svc := NewFeedbackService(store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "u1", SubmitFeedbackRequest{IssueType: "dirty", Rating: 2, Cleanliness: 2})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "u2", SubmitFeedbackRequest{IssueType: "broken-flush", Rating: 1, Cleanliness: 1})
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].UserID)
}
