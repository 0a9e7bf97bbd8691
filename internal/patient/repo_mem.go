package patient

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RepoMem is a thread-safe, in-memory Repository for testing and
// development. Create enforces email uniqueness under the same lock that
// assigns ids, mirroring the database unique constraint.
type RepoMem struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*Patient
	byEmail map[string]int64

	// CreateErr, when set, is returned by Create after the uniqueness
	// check. Lets tests exercise the persistence-failure path.
	CreateErr error
}

// NewRepoMem returns an empty in-memory repository.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		nextID:  1,
		byID:    make(map[int64]*Patient),
		byEmail: make(map[string]int64),
	}
}

func (r *RepoMem) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[p.Email]; exists {
		return ErrDuplicateEmail
	}
	if r.CreateErr != nil {
		return r.CreateErr
	}

	p.ID = r.nextID
	r.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	stored := *p
	r.byID[p.ID] = &stored
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *RepoMem) FindByEmail(_ context.Context, email string) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrPatientNotFound
	}
	p := *r.byID[id]
	return &p, nil
}

func (r *RepoMem) FindByID(_ context.Context, id int64) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	p := *stored
	return &p, nil
}

func (r *RepoMem) ListAll(_ context.Context) ([]*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*Patient, 0, len(r.byID))
	for _, stored := range r.byID {
		p := *stored
		items = append(items, &p)
	}
	// Newest first, ties broken by id so ordering is stable.
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
