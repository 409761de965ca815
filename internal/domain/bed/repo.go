package bed

import "context"

// Repository persists beds.
type Repository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id int) (*Bed, error)
	GetByNumber(ctx context.Context, bedNumber string) (*Bed, error)
	Update(ctx context.Context, b *Bed) error
	// CompareAndSetStatus flips the bed's status only if it currently holds
	// the expected value. Returns false when another writer got there first.
	CompareAndSetStatus(ctx context.Context, id int, from, to Status) (bool, error)
	List(ctx context.Context, ward WardType, status Status, limit, offset int) ([]*Bed, int, error)
	Occupancy(ctx context.Context) ([]*OccupancyStats, error)
}
