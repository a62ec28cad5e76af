package models

import (
	"time"
)

// Sauce is a rated item. Likes and Dislikes always equal the lengths of
// UsersLiked and UsersDisliked respectively; a user ID appears in at most
// one of the two arrays.
type Sauce struct {
	ID            string
	UserID        string
	Name          string
	Manufacturer  string
	Description   string
	MainPepper    string
	ImageURL      string
	Heat          int
	Likes         int
	Dislikes      int
	UsersLiked    []string
	UsersDisliked []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Vote values accepted by the like endpoint
const (
	VoteLike    = 1
	VoteNeutral = 0
	VoteDislike = -1
)

// ApplyVote moves the user between the liked/disliked arrays and keeps the
// counters in sync. A previous vote by the same user is always removed first,
// so repeated votes never double-count.
func (s *Sauce) ApplyVote(userID string, vote int) {
	if i := indexOf(s.UsersLiked, userID); i != -1 {
		s.UsersLiked = append(s.UsersLiked[:i], s.UsersLiked[i+1:]...)
		s.Likes--
	}
	if i := indexOf(s.UsersDisliked, userID); i != -1 {
		s.UsersDisliked = append(s.UsersDisliked[:i], s.UsersDisliked[i+1:]...)
		s.Dislikes--
	}

	switch vote {
	case VoteLike:
		s.UsersLiked = append(s.UsersLiked, userID)
		s.Likes++
	case VoteDislike:
		s.UsersDisliked = append(s.UsersDisliked, userID)
		s.Dislikes++
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
