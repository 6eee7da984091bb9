// Package session keeps one booking wizard per browser between requests.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/napryag/laundry_pickup/pkg/domain/booking"
	"github.com/napryag/laundry_pickup/pkg/domain/mappan"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

// DefaultTTL bounds how long an idle booking survives.
const DefaultTTL = 2 * time.Hour

var ErrNotFound = errs.NotFound("session not found")

// Session is the server-side state of one booking in progress.
type Session struct {
	ID        string          `json:"id"`
	Wizard    *booking.Wizard `json:"wizard"`
	Map       mappan.State    `json:"map"`
	Link      string          `json:"link,omitempty"` // deep link of the submitted booking
	CreatedAt time.Time       `json:"created_at"`
}

func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Wizard:    booking.New(),
		Map:       mappan.New(),
		CreatedAt: now,
	}
}

// Reset starts a new booking under the same id.
func (s *Session) Reset() {
	s.Wizard = booking.New()
	s.Map = mappan.New()
	s.Link = ""
}

// Store persists sessions for a limited time. Load returns ErrNotFound for
// unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// SaveMap replaces only the map state of a stored session, leaving the
	// wizard as the latest Save wrote it.
	SaveMap(ctx context.Context, id string, m mappan.State) error
}

// validID rejects ids that were not issued by New before they reach a store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func encode(s *Session) ([]byte, error) {
	if s == nil || s.Wizard == nil {
		return nil, errs.Invalid("session has no wizard")
	}
	if !validID(s.ID) {
		return nil, errs.Invalid("malformed session id").Arg("id", s.ID)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errs.New("failed to marshal session").Arg("id", s.ID).Wrap(err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.New("failed to unmarshal session").Wrap(err)
	}
	if s.Wizard == nil {
		return nil, errs.Invalid("session has no wizard").Arg("id", s.ID)
	}
	return &s, nil
}
