package recordinfra

import (
	"context"
	"sort"
	"sync"

	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
)

// MemoryRecordRepository keeps records in process. It serves local runs
// without a database.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[kernel.RecordID]studentrecord.ParsedRecord
}

func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{records: make(map[kernel.RecordID]studentrecord.ParsedRecord)}
}

var _ studentrecord.Repository = (*MemoryRecordRepository)(nil)

func (r *MemoryRecordRepository) Save(ctx context.Context, record studentrecord.ParsedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

func (r *MemoryRecordRepository) FindByID(ctx context.Context, id kernel.RecordID) (*studentrecord.ParsedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, studentrecord.ErrRecordNotFound().WithDetail("record_id", id.String())
	}
	return &rec, nil
}

func (r *MemoryRecordRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[studentrecord.ParsedRecord], error) {
	opts = opts.Normalize()

	r.mu.RLock()
	all := make([]studentrecord.ParsedRecord, 0, len(r.records))
	for _, rec := range r.records {
		rec.Result = nil
		all = append(all, rec)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	start := min(opts.Offset(), len(all))
	end := min(start+opts.PageSize, len(all))
	return kernel.NewPaginated(all[start:end], opts.Page, opts.PageSize, len(all)), nil
}

func (r *MemoryRecordRepository) Delete(ctx context.Context, id kernel.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return studentrecord.ErrRecordNotFound().WithDetail("record_id", id.String())
	}
	delete(r.records, id)
	return nil
}
