package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/brijesht/folio/internal/apperr"
	"github.com/brijesht/folio/internal/store"
)

// Publisher broadcasts record change events to live subscribers.
// Kinds are "created", "updated" and "deleted".
type Publisher interface {
	PublishRecordEvent(collection, kind, key string)
}

// Notifier is told about new contact messages. Notification failures are
// logged and never surfaced to the submitter.
type Notifier interface {
	NotifyNewMessage(m Message) error
}

// Service coordinates store access, read caching, and change events for
// every content collection.
type Service struct {
	db       store.Store
	events   Publisher
	cache    *cache.Cache
	notifier Notifier

	// Now stamps new messages. Overridable in tests.
	Now func() time.Time
}

// NewService creates a content service. events may be nil when no live
// subscribers exist (e.g. the MCP stdio mode).
func NewService(db store.Store, events Publisher) *Service {
	return &Service{
		db:     db,
		events: events,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
		Now:    time.Now,
	}
}

// SetNotifier installs the new-message notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) publish(collection, kind, key string) {
	if s.events != nil {
		s.events.PublishRecordEvent(collection, kind, key)
	}
}

// invalidate drops the cached snapshot after any write to a collection.
func (s *Service) invalidate(collection string) {
	s.cache.Delete(collection)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}

// snapshot returns a caller-owned copy so the cached slice is never
// aliased by callers.
func snapshot[T any](list []T) []T {
	out := make([]T, len(list))
	copy(out, list)
	return out
}

// Projects.

// ListProjects returns the sorted projects snapshot (display_order ascending).
func (s *Service) ListProjects(_ context.Context) ([]ProjectRecord, error) {
	if cached, found := s.cache.Get(CollectionProjects); found {
		return snapshot(cached.([]ProjectRecord)), nil
	}
	records, err := s.db.List(CollectionProjects)
	if err != nil {
		return nil, err
	}
	list := make([]ProjectRecord, 0, len(records))
	for _, r := range records {
		var p Project
		if err := json.Unmarshal(r.Data, &p); err != nil {
			return nil, fmt.Errorf("content: decode project %s: %w", r.Key, err)
		}
		list = append(list, ProjectRecord{Key: r.Key, Project: p})
	}
	SortProjects(list)
	s.cache.Set(CollectionProjects, list, cache.DefaultExpiration)
	return snapshot(list), nil
}

// CreateProject validates and appends a project under a fresh key.
func (s *Service) CreateProject(_ context.Context, p Project) (ProjectRecord, error) {
	if err := p.Validate(); err != nil {
		return ProjectRecord{}, invalidInput(err)
	}
	key, err := s.db.Push(CollectionProjects, p)
	if err != nil {
		return ProjectRecord{}, err
	}
	s.invalidate(CollectionProjects)
	s.publish(CollectionProjects, "created", key)
	return ProjectRecord{Key: key, Project: p}, nil
}

// UpdateProject overwrites the full record at key. The entire submitted
// form is written; there is no field diffing.
func (s *Service) UpdateProject(_ context.Context, key string, p Project) (ProjectRecord, error) {
	if err := p.Validate(); err != nil {
		return ProjectRecord{}, invalidInput(err)
	}
	var existing Project
	if err := s.db.Get(CollectionProjects, key, &existing); err != nil {
		return ProjectRecord{}, err
	}
	if err := s.db.Set(CollectionProjects, key, p); err != nil {
		return ProjectRecord{}, err
	}
	s.invalidate(CollectionProjects)
	s.publish(CollectionProjects, "updated", key)
	return ProjectRecord{Key: key, Project: p}, nil
}

// DeleteProject removes the record by key.
func (s *Service) DeleteProject(_ context.Context, key string) error {
	if err := s.db.Delete(CollectionProjects, key); err != nil {
		return err
	}
	s.invalidate(CollectionProjects)
	s.publish(CollectionProjects, "deleted", key)
	return nil
}

// Skills.

// ListSkills returns the sorted skills snapshot (category, then display_order).
func (s *Service) ListSkills(_ context.Context) ([]SkillRecord, error) {
	if cached, found := s.cache.Get(CollectionSkills); found {
		return snapshot(cached.([]SkillRecord)), nil
	}
	records, err := s.db.List(CollectionSkills)
	if err != nil {
		return nil, err
	}
	list := make([]SkillRecord, 0, len(records))
	for _, r := range records {
		var sk Skill
		if err := json.Unmarshal(r.Data, &sk); err != nil {
			return nil, fmt.Errorf("content: decode skill %s: %w", r.Key, err)
		}
		list = append(list, SkillRecord{Key: r.Key, Skill: sk})
	}
	SortSkills(list)
	s.cache.Set(CollectionSkills, list, cache.DefaultExpiration)
	return snapshot(list), nil
}

// CreateSkill validates and appends a skill under a fresh key.
func (s *Service) CreateSkill(_ context.Context, sk Skill) (SkillRecord, error) {
	if err := sk.Validate(); err != nil {
		return SkillRecord{}, invalidInput(err)
	}
	key, err := s.db.Push(CollectionSkills, sk)
	if err != nil {
		return SkillRecord{}, err
	}
	s.invalidate(CollectionSkills)
	s.publish(CollectionSkills, "created", key)
	return SkillRecord{Key: key, Skill: sk}, nil
}

// UpdateSkill overwrites the full record at key.
func (s *Service) UpdateSkill(_ context.Context, key string, sk Skill) (SkillRecord, error) {
	if err := sk.Validate(); err != nil {
		return SkillRecord{}, invalidInput(err)
	}
	var existing Skill
	if err := s.db.Get(CollectionSkills, key, &existing); err != nil {
		return SkillRecord{}, err
	}
	if err := s.db.Set(CollectionSkills, key, sk); err != nil {
		return SkillRecord{}, err
	}
	s.invalidate(CollectionSkills)
	s.publish(CollectionSkills, "updated", key)
	return SkillRecord{Key: key, Skill: sk}, nil
}

// DeleteSkill removes the record by key.
func (s *Service) DeleteSkill(_ context.Context, key string) error {
	if err := s.db.Delete(CollectionSkills, key); err != nil {
		return err
	}
	s.invalidate(CollectionSkills)
	s.publish(CollectionSkills, "deleted", key)
	return nil
}

// Experiences.

// ListExperiences returns the sorted experiences snapshot (start_date descending).
func (s *Service) ListExperiences(_ context.Context) ([]ExperienceRecord, error) {
	if cached, found := s.cache.Get(CollectionExperiences); found {
		return snapshot(cached.([]ExperienceRecord)), nil
	}
	records, err := s.db.List(CollectionExperiences)
	if err != nil {
		return nil, err
	}
	list := make([]ExperienceRecord, 0, len(records))
	for _, r := range records {
		var e Experience
		if err := json.Unmarshal(r.Data, &e); err != nil {
			return nil, fmt.Errorf("content: decode experience %s: %w", r.Key, err)
		}
		list = append(list, ExperienceRecord{Key: r.Key, Experience: e})
	}
	SortExperiences(list)
	s.cache.Set(CollectionExperiences, list, cache.DefaultExpiration)
	return snapshot(list), nil
}

// CreateExperience validates and appends an experience under a fresh key.
func (s *Service) CreateExperience(_ context.Context, e Experience) (ExperienceRecord, error) {
	if err := e.Validate(); err != nil {
		return ExperienceRecord{}, invalidInput(err)
	}
	key, err := s.db.Push(CollectionExperiences, e)
	if err != nil {
		return ExperienceRecord{}, err
	}
	s.invalidate(CollectionExperiences)
	s.publish(CollectionExperiences, "created", key)
	return ExperienceRecord{Key: key, Experience: e}, nil
}

// UpdateExperience overwrites the full record at key.
func (s *Service) UpdateExperience(_ context.Context, key string, e Experience) (ExperienceRecord, error) {
	if err := e.Validate(); err != nil {
		return ExperienceRecord{}, invalidInput(err)
	}
	var existing Experience
	if err := s.db.Get(CollectionExperiences, key, &existing); err != nil {
		return ExperienceRecord{}, err
	}
	if err := s.db.Set(CollectionExperiences, key, e); err != nil {
		return ExperienceRecord{}, err
	}
	s.invalidate(CollectionExperiences)
	s.publish(CollectionExperiences, "updated", key)
	return ExperienceRecord{Key: key, Experience: e}, nil
}

// DeleteExperience removes the record by key.
func (s *Service) DeleteExperience(_ context.Context, key string) error {
	if err := s.db.Delete(CollectionExperiences, key); err != nil {
		return err
	}
	s.invalidate(CollectionExperiences)
	s.publish(CollectionExperiences, "deleted", key)
	return nil
}

// Messages.

// ListMessages returns messages newest-first, optionally only unread ones.
// Admin reads skip the cache so the inbox is always current.
func (s *Service) ListMessages(_ context.Context, unreadOnly bool) ([]MessageRecord, error) {
	records, err := s.db.List(CollectionMessages)
	if err != nil {
		return nil, err
	}
	list := make([]MessageRecord, 0, len(records))
	for _, r := range records {
		var m Message
		if err := json.Unmarshal(r.Data, &m); err != nil {
			return nil, fmt.Errorf("content: decode message %s: %w", r.Key, err)
		}
		if unreadOnly && m.IsRead {
			continue
		}
		list = append(list, MessageRecord{Key: r.Key, Message: m})
	}
	SortMessages(list)
	return list, nil
}

// CreateMessage records a contact-form submission. The server stamps
// is_read=false and the current time in epoch milliseconds.
func (s *Service) CreateMessage(_ context.Context, in ContactSubmission) (MessageRecord, error) {
	if err := in.Validate(); err != nil {
		return MessageRecord{}, invalidInput(err)
	}
	m := Message{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Body:      in.Message,
		IsRead:    false,
		Timestamp: s.Now().UnixMilli(),
	}
	key, err := s.db.Push(CollectionMessages, m)
	if err != nil {
		return MessageRecord{}, err
	}
	s.publish(CollectionMessages, "created", key)

	if s.notifier != nil {
		go func(msg Message) {
			if err := s.notifier.NotifyNewMessage(msg); err != nil {
				slog.Error("contact notification failed", slog.String("error", err.Error()))
			}
		}(m)
	}
	return MessageRecord{Key: key, Message: m}, nil
}

// SetMessageRead patches only the is_read flag, leaving every other field
// and the record's collection membership untouched.
func (s *Service) SetMessageRead(_ context.Context, key string, read bool) error {
	if err := s.db.Patch(CollectionMessages, key, map[string]any{"is_read": read}); err != nil {
		return err
	}
	s.publish(CollectionMessages, "updated", key)
	return nil
}

// DeleteMessage removes the record by key.
func (s *Service) DeleteMessage(_ context.Context, key string) error {
	if err := s.db.Delete(CollectionMessages, key); err != nil {
		return err
	}
	s.publish(CollectionMessages, "deleted", key)
	return nil
}

// Settings.

// GetProfile fetches the singleton profile record. A missing record is
// not an error; the zero Profile is returned.
func (s *Service) GetProfile(_ context.Context) (Profile, error) {
	if cached, found := s.cache.Get(CollectionSettings); found {
		return cached.(Profile), nil
	}
	var p Profile
	err := s.db.Get(CollectionSettings, ProfileKey, &p)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	s.cache.Set(CollectionSettings, p, cache.DefaultExpiration)
	return p, nil
}

// SetProfile overwrites the singleton profile record.
func (s *Service) SetProfile(_ context.Context, p Profile) error {
	if err := s.db.Set(CollectionSettings, ProfileKey, p); err != nil {
		return err
	}
	s.invalidate(CollectionSettings)
	s.publish(CollectionSettings, "updated", ProfileKey)
	return nil
}
