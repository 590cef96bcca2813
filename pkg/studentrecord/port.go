package studentrecord

import (
	"context"

	"github.com/Abraxas-365/saenggibu/pkg/kernel"
)

type Repository interface {
	Save(ctx context.Context, record ParsedRecord) error
	FindByID(ctx context.Context, id kernel.RecordID) (*ParsedRecord, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[ParsedRecord], error)
	Delete(ctx context.Context, id kernel.RecordID) error
}
