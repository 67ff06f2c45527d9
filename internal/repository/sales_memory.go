package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"ticketsale/internal/domain/sales"
	"time"
)

// MemorySalesRepo keeps sales in process memory. It is used when no database is
// configured and in tests. Updates of one reference are serialised by a per-reference lock.
type MemorySalesRepo struct {
	mu    sync.RWMutex
	sales map[string]sales.TicketSale
	locks map[string]*sync.Mutex
}

func NewMemorySalesRepo() *MemorySalesRepo {
	return &MemorySalesRepo{
		sales: map[string]sales.TicketSale{},
		locks: map[string]*sync.Mutex{},
	}
}

func cloneSale(sale sales.TicketSale) sales.TicketSale {
	if sale.Tickets != nil {
		sale.Tickets = append([]sales.Ticket(nil), sale.Tickets...)
	}
	return sale
}

func (r *MemorySalesRepo) Create(_ context.Context, sale sales.TicketSale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := sale.Reference()
	for _, existing := range r.sales {
		if existing.Reference() == ref || existing.TicketID == sale.TicketID {
			return fmt.Errorf("%w: %s", sales.ErrDuplicateReference, ref)
		}
	}

	r.sales[ref] = cloneSale(sale)
	r.locks[ref] = &sync.Mutex{}
	return nil
}

func (r *MemorySalesRepo) FindByReference(_ context.Context, reference string) (sales.TicketSale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, ok := r.sales[reference]
	if !ok {
		return sales.TicketSale{}, sales.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (r *MemorySalesRepo) FindByTicketID(_ context.Context, ticketID string) (sales.TicketSale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sale := range r.sales {
		if sale.TicketID == ticketID || hasTicketID(sale, ticketID) {
			return cloneSale(sale), nil
		}
	}
	return sales.TicketSale{}, sales.ErrNotFound
}

func hasTicketID(sale sales.TicketSale, ticketID string) bool {
	for _, t := range sale.Tickets {
		if t.TicketID == ticketID {
			return true
		}
	}
	return false
}

func (r *MemorySalesRepo) ReferenceExists(_ context.Context, reference string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sales[reference]
	return ok, nil
}

func (r *MemorySalesRepo) TicketIDExists(_ context.Context, ticketID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sales[ticketID]; ok {
		return true, nil
	}
	for _, sale := range r.sales {
		if sale.TicketID == ticketID || hasTicketID(sale, ticketID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemorySalesRepo) UpdateByReference(
	ctx context.Context,
	reference string,
	updateFn func(ctx context.Context, sale *sales.TicketSale) error,
) (sales.TicketSale, error) {
	r.mu.RLock()
	lock, ok := r.locks[reference]
	r.mu.RUnlock()
	if !ok {
		return sales.TicketSale{}, sales.ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	sale, err := r.FindByReference(ctx, reference)
	if err != nil {
		return sales.TicketSale{}, err
	}

	if err := updateFn(ctx, &sale); err != nil {
		return sales.TicketSale{}, err
	}

	r.mu.Lock()
	r.sales[reference] = cloneSale(sale)
	r.mu.Unlock()

	return sale, nil
}

func (r *MemorySalesRepo) FindRecentTransferClick(
	_ context.Context,
	clientIP string,
	ticketType sales.TicketType,
	since time.Time,
	excludeReference string,
) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *time.Time
	for ref, sale := range r.sales {
		clickedAt := sale.PaymentInfo.TransferClickedAt
		if ref == excludeReference ||
			clickedAt == nil ||
			sale.PaymentInfo.UserIPAddress != clientIP ||
			sale.TicketInfo.Type != ticketType ||
			clickedAt.Before(since) {
			continue
		}
		if latest == nil || clickedAt.After(*latest) {
			latest = clickedAt
		}
	}
	return latest, nil
}

func (r *MemorySalesRepo) FindPendingApproval(_ context.Context, markedBefore, remindedBefore time.Time) ([]sales.TicketSale, error) {
	list := r.filter(func(sale sales.TicketSale) bool {
		p := sale.PaymentInfo
		return p.Status == sales.PaymentPendingApproval &&
			p.TransferMarkedAt != nil && p.TransferMarkedAt.Before(markedBefore) &&
			(p.LastReminderSent == nil || p.LastReminderSent.Before(remindedBefore))
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].PaymentInfo.TransferMarkedAt.Before(*list[j].PaymentInfo.TransferMarkedAt)
	})
	return list, nil
}

func (r *MemorySalesRepo) ListPendingTransfers(_ context.Context) ([]sales.TicketSale, error) {
	list := r.filter(func(sale sales.TicketSale) bool {
		return sale.PaymentInfo.Status == sales.PaymentPendingApproval
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].PendingSince().After(list[j].PendingSince())
	})
	return list, nil
}

func (r *MemorySalesRepo) ListCompleted(_ context.Context) ([]sales.TicketSale, error) {
	list := r.filter(func(sale sales.TicketSale) bool {
		return sale.PaymentInfo.Status == sales.PaymentCompleted
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *MemorySalesRepo) SoldByType(ctx context.Context) (map[sales.TicketType]int, error) {
	completed, _ := r.ListCompleted(ctx)

	sold := map[sales.TicketType]int{}
	for _, sale := range completed {
		sold[sale.TicketInfo.Type] += sale.TicketInfo.Quantity
	}
	return sold, nil
}

func (r *MemorySalesRepo) List(_ context.Context, filter sales.Filter) (sales.Page, error) {
	filter = filter.Normalized()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	list := r.filter(func(sale sales.TicketSale) bool {
		switch {
		case filter.Status != "" && sale.PaymentInfo.Status != filter.Status:
			return false
		case filter.TicketType != "" && sale.TicketInfo.Type != filter.TicketType:
			return false
		case search != "" && !strings.Contains(searchText(sale), search):
			return false
		case !filter.From.IsZero() && sale.CreatedAt.Before(filter.From):
			return false
		case !filter.To.IsZero() && sale.CreatedAt.After(filter.To):
			return false
		}
		return true
	})

	sort.SliceStable(list, func(i, j int) bool {
		less := lessBy(filter.SortBy, list[i], list[j])
		if filter.SortOrder == sales.SortAsc {
			return less
		}
		return lessBy(filter.SortBy, list[j], list[i])
	})

	total := len(list)
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)

	return sales.Page{Sales: list[start:end], TotalCount: total}, nil
}

func lessBy(field string, a, b sales.TicketSale) bool {
	switch field {
	case "amount":
		return a.PaymentInfo.Amount < b.PaymentInfo.Amount
	case "reference":
		return a.Reference() < b.Reference()
	case "status":
		return a.PaymentInfo.Status < b.PaymentInfo.Status
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (r *MemorySalesRepo) filter(keep func(sales.TicketSale) bool) []sales.TicketSale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]sales.TicketSale, 0)
	for _, sale := range r.sales {
		if keep(sale) {
			list = append(list, cloneSale(sale))
		}
	}
	return list
}
