package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyVote_Like(t *testing.T) {
	s := &Sauce{UsersLiked: []string{}, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteLike)

	assert.Equal(t, 1, s.Likes)
	assert.Equal(t, 0, s.Dislikes)
	assert.Equal(t, []string{"u1"}, s.UsersLiked)
}

func TestApplyVote_Dislike(t *testing.T) {
	s := &Sauce{UsersLiked: []string{}, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteDislike)

	assert.Equal(t, 0, s.Likes)
	assert.Equal(t, 1, s.Dislikes)
	assert.Equal(t, []string{"u1"}, s.UsersDisliked)
}

func TestApplyVote_SwitchSides(t *testing.T) {
	s := &Sauce{UsersLiked: []string{"u1"}, Likes: 1, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteDislike)

	assert.Equal(t, 0, s.Likes)
	assert.Equal(t, 1, s.Dislikes)
	assert.Empty(t, s.UsersLiked)
	assert.Equal(t, []string{"u1"}, s.UsersDisliked)
}

func TestApplyVote_Withdraw(t *testing.T) {
	s := &Sauce{UsersLiked: []string{"u1"}, Likes: 1, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteNeutral)

	assert.Equal(t, 0, s.Likes)
	assert.Equal(t, 0, s.Dislikes)
	assert.Empty(t, s.UsersLiked)
	assert.Empty(t, s.UsersDisliked)
}

func TestApplyVote_RepeatedLikeDoesNotDoubleCount(t *testing.T) {
	s := &Sauce{UsersLiked: []string{}, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteLike)
	s.ApplyVote("u1", VoteLike)

	assert.Equal(t, 1, s.Likes)
	assert.Equal(t, []string{"u1"}, s.UsersLiked)
}

func TestApplyVote_IndependentUsers(t *testing.T) {
	s := &Sauce{UsersLiked: []string{}, UsersDisliked: []string{}}

	s.ApplyVote("u1", VoteLike)
	s.ApplyVote("u2", VoteLike)
	s.ApplyVote("u3", VoteDislike)

	assert.Equal(t, 2, s.Likes)
	assert.Equal(t, 1, s.Dislikes)
}
