// Package session holds who is using the library and the owner's profile.
//
// State is an explicit object passed to whoever needs it. It loads the
// persisted session lazily, on first use, and broadcasts an Event to every
// subscriber on login, logout and profile image changes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
)

// SettingProfileImage is the setting key holding the owner's photo.
const SettingProfileImage = "profileImage"

// Visitor identity used for every visitor login.
const (
	VisitorName   = "زائر الموقع"
	VisitorEmail  = "visitor@gmail.com"
	VisitorAvatar = "https://ui-avatars.com/api/?name=Visitor&background=0ea5e9&color=fff&length=1"
)

// Session is the persisted identity.
type Session struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   Role   `json:"role"`
}

// IsOwner reports whether the session carries the Owner role.
func (s Session) IsOwner() bool { return s.Role == Owner }

// Profile is the configured owner identity.
type Profile struct {
	Name  string
	Email string
}

// Settings is the slice of the document store that State needs.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// EventKind says what changed.
type EventKind int

// Event kinds.
const (
	EventLogin EventKind = iota + 1
	EventLogout
	EventProfileImage
)

func (k EventKind) String() string {
	switch k {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventProfileImage:
		return "profile-image"
	}
	return "unknown"
}

// Event is delivered to subscribers after a change is persisted.
type Event struct {
	Kind         EventKind
	Session      Session
	ProfileImage string
}

// State is the process-wide session and profile cache.
type State struct {
	blob     BlobStore
	verifier Verifier
	settings Settings
	owner    Profile
	log      *logrus.Entry

	mu      sync.Mutex
	loaded  bool
	current Session
	subs    map[int]chan Event
	nextSub int
}

// New returns a State. Nothing is read until the first call that needs it.
func New(blob BlobStore, verifier Verifier, settings Settings, owner Profile) *State {
	return &State{
		blob:     blob,
		verifier: verifier,
		settings: settings,
		owner:    owner,
		log:      logrus.WithField("component", "session"),
		subs:     make(map[int]chan Event),
	}
}

// Load reads the persisted session once. An unreadable or corrupt blob is
// treated as no session.
func (s *State) Load() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Current returns the active session, loading it on first use.
func (s *State) Current() Session {
	return s.Load()
}

func (s *State) loadLocked() Session {
	if s.loaded {
		return s.current
	}
	s.loaded = true
	s.current = Session{Role: Anonymous}

	data, err := s.blob.Load()
	if err != nil {
		s.log.WithError(err).Warn("could not read saved session")
		return s.current
	}
	if len(data) == 0 {
		return s.current
	}
	var saved Session
	if err := json.Unmarshal(data, &saved); err != nil {
		s.log.WithError(err).Warn("discarding corrupt session")
		return s.current
	}
	s.current = saved
	return s.current
}

// LoginVisitor starts a visitor session with the fixed visitor identity.
func (s *State) LoginVisitor() (Session, error) {
	return s.commit(Session{
		Name:   VisitorName,
		Email:  VisitorEmail,
		Avatar: VisitorAvatar,
		Role:   Visitor,
	})
}

// LoginOwner starts an owner session if the verifier accepts c. Any
// rejection is reported as ErrCredentials.
func (s *State) LoginOwner(ctx context.Context, c Credentials) (Session, error) {
	if err := s.verifier.Verify(ctx, c); err != nil {
		s.log.Info("owner login rejected")
		return Session{}, ErrCredentials
	}
	avatar, err := s.ProfileImage(ctx)
	if err != nil {
		return Session{}, err
	}
	return s.commit(Session{
		Name:   s.owner.Name,
		Email:  s.owner.Email,
		Avatar: avatar,
		Role:   Owner,
	})
}

// Login dispatches on role. Anonymous is not a login target.
func (s *State) Login(ctx context.Context, role Role, c Credentials) (Session, error) {
	switch role {
	case Visitor:
		return s.LoginVisitor()
	case Owner:
		return s.LoginOwner(ctx, c)
	}
	return Session{}, fmt.Errorf("cannot log in as %s", role)
}

func (s *State) commit(sess Session) (Session, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := s.blob.Save(data); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	s.loaded = true
	s.current = sess
	s.broadcastLocked(Event{Kind: EventLogin, Session: sess})
	s.mu.Unlock()

	s.log.WithField("role", sess.Role).Info("logged in")
	return sess, nil
}

// Logout clears the persisted session.
func (s *State) Logout() error {
	if err := s.blob.Clear(); err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded = true
	s.current = Session{Role: Anonymous}
	s.broadcastLocked(Event{Kind: EventLogout, Session: s.current})
	s.mu.Unlock()

	s.log.Info("logged out")
	return nil
}

// ProfileImage returns the owner's saved photo or a generated placeholder.
func (s *State) ProfileImage(ctx context.Context) (string, error) {
	v, ok, err := s.settings.GetSetting(ctx, SettingProfileImage)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}
	return PlaceholderAvatar(s.owner.Name), nil
}

// SetProfileImage saves the owner's photo and notifies subscribers. Only an
// owner session may change it.
func (s *State) SetProfileImage(ctx context.Context, uri string) error {
	if !s.Current().IsOwner() {
		return ErrOwnerRequired
	}
	if err := s.settings.PutSetting(ctx, SettingProfileImage, uri); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current.Role == Owner {
		s.current.Avatar = uri
		if data, err := json.Marshal(s.current); err == nil {
			if err := s.blob.Save(data); err != nil {
				s.log.WithError(err).Warn("could not update saved session avatar")
			}
		}
	}
	s.broadcastLocked(Event{Kind: EventProfileImage, Session: s.current, ProfileImage: uri})
	s.mu.Unlock()
	return nil
}

// Subscribe registers for change events. buffer sets the channel capacity;
// events for a full channel are dropped rather than blocking the publisher.
// Call cancel to unsubscribe and close the channel.
func (s *State) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *State) broadcastLocked(ev Event) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.WithFields(logrus.Fields{"subscriber": id, "event": ev.Kind}).Debug("subscriber full, event dropped")
		}
	}
}

// PlaceholderAvatar returns a generated avatar URL for name.
func PlaceholderAvatar(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "111827")
	q.Set("color", "fff")
	q.Set("size", "256")
	return "https://ui-avatars.com/api/?" + q.Encode()
}
