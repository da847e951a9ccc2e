// Package memory is an in-process implementation of repository.Store used in
// development mode and by service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

type state struct {
	issues   map[string]domain.Issue
	comments []domain.Comment
	audit    []domain.AuditEntry
	users    map[string]domain.User
}

func newState() *state {
	return &state{
		issues: map[string]domain.Issue{},
		users:  map[string]domain.User{},
	}
}

func (s *state) clone() *state {
	out := &state{
		issues:   make(map[string]domain.Issue, len(s.issues)),
		comments: append([]domain.Comment(nil), s.comments...),
		audit:    append([]domain.AuditEntry(nil), s.audit...),
		users:    make(map[string]domain.User, len(s.users)),
	}
	for k, v := range s.issues {
		out.issues[k] = v.Clone()
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

// Store keeps every table in memory. Transactions run one at a time against
// a copy that replaces the live state only when fn succeeds.
type Store struct {
	mu          sync.RWMutex
	state       *state
	unavailable error
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// SetUnavailable makes every operation fail with err. Pass nil to recover.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = err
}

func (s *Store) Issues() repository.IssueRepository     { return &issueRepo{access: s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{access: s} }
func (s *Store) Audit() repository.AuditRepository      { return &auditRepo{access: s} }
func (s *Store) Users() repository.UserRepository       { return &userRepo{access: s} }

func (s *Store) WithTx(ctx context.Context, fn func(stores repository.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable != nil {
		return s.unavailable
	}
	work := s.state.clone()
	if err := fn(&txStores{access: &txAccess{st: work}}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unavailable
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable != nil {
		return s.unavailable
	}
	return fn(s.state)
}

func (s *Store) write(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable != nil {
		return s.unavailable
	}
	return fn(s.state)
}

type access interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

type txAccess struct {
	st *state
}

func (a *txAccess) read(fn func(*state) error) error  { return fn(a.st) }
func (a *txAccess) write(fn func(*state) error) error { return fn(a.st) }

type txStores struct {
	access access
}

func (t *txStores) Issues() repository.IssueRepository     { return &issueRepo{access: t.access} }
func (t *txStores) Comments() repository.CommentRepository { return &commentRepo{access: t.access} }
func (t *txStores) Audit() repository.AuditRepository      { return &auditRepo{access: t.access} }
func (t *txStores) Users() repository.UserRepository       { return &userRepo{access: t.access} }

type issueRepo struct {
	access access
}

func (r *issueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	var out *domain.Issue
	err := r.access.read(func(st *state) error {
		issue, ok := st.issues[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := issue.Clone()
		out = &cp
		return nil
	})
	return out, err
}

func (r *issueRepo) GetForUpdate(ctx context.Context, id string) (*domain.Issue, error) {
	return r.GetByID(ctx, id)
}

func (r *issueRepo) Save(_ context.Context, issue *domain.Issue) error {
	return r.access.write(func(st *state) error {
		st.issues[issue.ID] = issue.Clone()
		return nil
	})
}

func (r *issueRepo) List(_ context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	result := []domain.Issue{}
	err := r.access.read(func(st *state) error {
		for _, issue := range st.issues {
			if filter.Matches(&issue) {
				result = append(result, issue.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset >= len(result) {
			return []domain.Issue{}, nil
		}
		end := offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

type commentRepo struct {
	access access
}

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	return r.access.write(func(st *state) error {
		st.comments = append(st.comments, *comment)
		return nil
	})
}

func (r *commentRepo) ListByIssue(_ context.Context, issueID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	err := r.access.read(func(st *state) error {
		for _, c := range st.comments {
			if c.IssueID == issueID {
				result = append(result, c)
			}
		}
		return nil
	})
	return result, err
}

type auditRepo struct {
	access access
}

func (r *auditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	return r.access.write(func(st *state) error {
		st.audit = append(st.audit, *entry)
		return nil
	})
}

func (r *auditRepo) ListByIssue(_ context.Context, issueID string) ([]domain.AuditEntry, error) {
	result := []domain.AuditEntry{}
	err := r.access.read(func(st *state) error {
		for _, e := range st.audit {
			if e.IssueID == issueID {
				result = append(result, e)
			}
		}
		return nil
	})
	return result, err
}

type userRepo struct {
	access access
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	return r.access.write(func(st *state) error {
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	return r.access.write(func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return repository.ErrNotFound
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.access.read(func(st *state) error {
		user, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.access.read(func(st *state) error {
		for _, user := range st.users {
			if user.Email == email {
				u := user
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *userRepo) IsActive(_ context.Context, id string) (bool, error) {
	var active bool
	err := r.access.read(func(st *state) error {
		active = st.users[id].IsActive
		return nil
	})
	return active, err
}
