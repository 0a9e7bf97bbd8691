package patient

import "context"

// Repository is the persistence contract for patients.
//
// Create must enforce email uniqueness atomically: under concurrent
// registrations with the same email exactly one Create succeeds and the
// others return ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	FindByEmail(ctx context.Context, email string) (*Patient, error)
	FindByID(ctx context.Context, id int64) (*Patient, error)
	ListAll(ctx context.Context) ([]*Patient, error)
}
