package users

import "context"

// Service is the data-service contract of the user-management screen.
type Service interface {
	// List returns every user in a stable order, projected to Summary.
	List(ctx context.Context) ([]Summary, error)
	// Get returns the user with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (User, error)
	// Create stores a new user and returns the identifier it was assigned.
	Create(ctx context.Context, p Draft) (string, error)
	// Update replaces the profile of an existing user or returns ErrNotFound.
	Update(ctx context.Context, u User) error
	// Delete removes a user or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// Fixtures returns the users the mock backends start with.
func Fixtures() []User {
	return []User{
		{ID: "doctor-01", Draft: Draft{Name: "Doctor 01", Email: "doctor01@email.com", Type: TypeDoctor, Lanr: "LANR-01"}},
		{ID: "doctor-02", Draft: Draft{Name: "Doctor 02", Email: "doctor02@email.com", Type: TypeDoctor, Lanr: "LANR-02"}},
		{ID: "mfa-01", Draft: Draft{Name: "MFA 01", Email: "mfa01@email.com", Type: TypeMFA}},
	}
}

var (
	_ Service = (*MemoryService)(nil)
	_ Service = (*PostgresService)(nil)
	_ Service = (*RedisService)(nil)
	_ Service = (*MongoService)(nil)
)
