package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	trmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"strings"
	"ticketsale/internal/domain/sales"
	"time"
)

const uniqueViolation = "23505"

type ticketSaleRow struct {
	ID                uuid.UUID  `db:"id"`
	Reference         string     `db:"reference"`
	TicketID          string     `db:"ticket_id"`
	TicketType        string     `db:"ticket_type"`
	Quantity          int        `db:"quantity"`
	Amount            int64      `db:"amount"`
	PaymentMethod     string     `db:"payment_method"`
	PaymentStatus     string     `db:"payment_status"`
	UserIPAddress     string     `db:"user_ip_address"`
	TransferClickedAt *time.Time `db:"transfer_clicked_at"`
	TransferMarkedAt  *time.Time `db:"transfer_marked_at"`
	LastReminderSent  *time.Time `db:"last_reminder_sent"`
	PaidAt            *time.Time `db:"paid_at"`
	SearchText        string     `db:"search_text"`
	Payload           []byte     `db:"payload"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func saleToRow(sale sales.TicketSale) (ticketSaleRow, error) {
	payload, err := json.Marshal(sale)
	if err != nil {
		return ticketSaleRow{}, fmt.Errorf("failed to marshal sale %s: %w", sale.Reference(), err)
	}

	return ticketSaleRow{
		ID:                sale.ID,
		Reference:         sale.Reference(),
		TicketID:          sale.TicketID,
		TicketType:        string(sale.TicketInfo.Type),
		Quantity:          sale.TicketInfo.Quantity,
		Amount:            sale.PaymentInfo.Amount,
		PaymentMethod:     string(sale.PaymentInfo.Method),
		PaymentStatus:     string(sale.PaymentInfo.Status),
		UserIPAddress:     sale.PaymentInfo.UserIPAddress,
		TransferClickedAt: sale.PaymentInfo.TransferClickedAt,
		TransferMarkedAt:  sale.PaymentInfo.TransferMarkedAt,
		LastReminderSent:  sale.PaymentInfo.LastReminderSent,
		PaidAt:            sale.PaymentInfo.PaidAt,
		SearchText:        searchText(sale),
		Payload:           payload,
		CreatedAt:         sale.CreatedAt,
		UpdatedAt:         sale.UpdatedAt,
	}, nil
}

func searchText(sale sales.TicketSale) string {
	return strings.ToLower(strings.Join([]string{
		sale.CustomerInfo.FullName(),
		sale.CustomerInfo.Email,
		sale.CustomerInfo.Phone,
		sale.Reference(),
	}, " "))
}

func unmarshalSale(payload []byte) (sales.TicketSale, error) {
	var sale sales.TicketSale
	if err := json.Unmarshal(payload, &sale); err != nil {
		return sales.TicketSale{}, fmt.Errorf("failed to unmarshal sale: %w", err)
	}
	return sale, nil
}

type SalesRepo struct {
	db        *sqlx.DB
	getter    *trmsqlx.CtxGetter
	trManager *trmanager.Manager
}

func NewSalesRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter, trManager *trmanager.Manager) *SalesRepo {
	return &SalesRepo{
		db:        db,
		getter:    getter,
		trManager: trManager,
	}
}

func (r *SalesRepo) Create(ctx context.Context, sale sales.TicketSale) error {
	row, err := saleToRow(sale)
	if err != nil {
		return err
	}

	_, err = sqlx.NamedExecContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), `
		INSERT INTO ticket_sales (
			id, reference, ticket_id, ticket_type, quantity, amount, payment_method, payment_status,
			user_ip_address, transfer_clicked_at, transfer_marked_at, last_reminder_sent, paid_at,
			search_text, payload, created_at, updated_at
		) VALUES (
			:id, :reference, :ticket_id, :ticket_type, :quantity, :amount, :payment_method, :payment_status,
			:user_ip_address, :transfer_clicked_at, :transfer_marked_at, :last_reminder_sent, :paid_at,
			:search_text, :payload, :created_at, :updated_at
		)`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", sales.ErrDuplicateReference, row.Reference)
		}
		return fmt.Errorf("failed to create sale %s: %w", row.Reference, err)
	}

	return nil
}

func (r *SalesRepo) FindByReference(ctx context.Context, reference string) (sales.TicketSale, error) {
	return r.findOne(ctx, "SELECT payload FROM ticket_sales WHERE reference = $1", reference)
}

func (r *SalesRepo) FindByTicketID(ctx context.Context, ticketID string) (sales.TicketSale, error) {
	return r.findOne(ctx, `
		SELECT payload FROM ticket_sales
		WHERE ticket_id = $1
			OR payload -> 'tickets' @> jsonb_build_array(jsonb_build_object('ticketId', $1::text))
		LIMIT 1`, ticketID)
}

func (r *SalesRepo) findOne(ctx context.Context, query string, args ...any) (sales.TicketSale, error) {
	var payload []byte

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowxContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return sales.TicketSale{}, sales.ErrNotFound
	}
	if err != nil {
		return sales.TicketSale{}, fmt.Errorf("failed to find sale: %w", err)
	}

	return unmarshalSale(payload)
}

func (r *SalesRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM ticket_sales WHERE reference = $1)", reference)
}

// TicketIDExists checks sale references and ticket IDs, they share one namespace.
func (r *SalesRepo) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ticket_sales
			WHERE reference = $1
				OR ticket_id = $1
				OR payload -> 'tickets' @> jsonb_build_array(jsonb_build_object('ticketId', $1::text))
		)`, ticketID)
}

func (r *SalesRepo) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &exists, query, arg); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", arg, err)
	}
	return exists, nil
}

// UpdateByReference locks the sale row for the duration of updateFn. An error
// from updateFn rolls the transaction back and leaves the sale untouched.
func (r *SalesRepo) UpdateByReference(
	ctx context.Context,
	reference string,
	updateFn func(ctx context.Context, sale *sales.TicketSale) error,
) (sales.TicketSale, error) {
	var updated sales.TicketSale

	err := r.trManager.Do(ctx, func(ctx context.Context) error {
		sale, err := r.findOne(ctx, "SELECT payload FROM ticket_sales WHERE reference = $1 FOR UPDATE", reference)
		if err != nil {
			return err
		}

		if err := updateFn(ctx, &sale); err != nil {
			return err
		}

		if err := r.update(ctx, sale); err != nil {
			return err
		}

		updated = sale
		return nil
	})
	if err != nil {
		return sales.TicketSale{}, err
	}

	return updated, nil
}

func (r *SalesRepo) update(ctx context.Context, sale sales.TicketSale) error {
	row, err := saleToRow(sale)
	if err != nil {
		return err
	}

	_, err = sqlx.NamedExecContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), `
		UPDATE ticket_sales SET
			ticket_id = :ticket_id,
			payment_status = :payment_status,
			user_ip_address = :user_ip_address,
			transfer_clicked_at = :transfer_clicked_at,
			transfer_marked_at = :transfer_marked_at,
			last_reminder_sent = :last_reminder_sent,
			paid_at = :paid_at,
			search_text = :search_text,
			payload = :payload,
			updated_at = :updated_at
		WHERE reference = :reference`, row)
	if err != nil {
		return fmt.Errorf("failed to update sale %s: %w", row.Reference, err)
	}

	return nil
}

// FindRecentTransferClick returns the latest transfer click from clientIP on
// ticketType at or after since, ignoring the sale excludeReference.
func (r *SalesRepo) FindRecentTransferClick(
	ctx context.Context,
	clientIP string,
	ticketType sales.TicketType,
	since time.Time,
	excludeReference string,
) (*time.Time, error) {
	var clickedAt *time.Time

	err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &clickedAt, `
		SELECT MAX(transfer_clicked_at) FROM ticket_sales
		WHERE user_ip_address = $1
			AND ticket_type = $2
			AND transfer_clicked_at >= $3
			AND reference <> $4`,
		clientIP, string(ticketType), since, excludeReference,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent transfer click: %w", err)
	}

	return clickedAt, nil
}

func (r *SalesRepo) FindPendingApproval(ctx context.Context, markedBefore, remindedBefore time.Time) ([]sales.TicketSale, error) {
	return r.selectSales(ctx, `
		SELECT payload FROM ticket_sales
		WHERE payment_status = $1
			AND transfer_marked_at < $2
			AND (last_reminder_sent IS NULL OR last_reminder_sent < $3)
		ORDER BY transfer_marked_at ASC`,
		string(sales.PaymentPendingApproval), markedBefore, remindedBefore,
	)
}

func (r *SalesRepo) ListPendingTransfers(ctx context.Context) ([]sales.TicketSale, error) {
	return r.selectSales(ctx, `
		SELECT payload FROM ticket_sales
		WHERE payment_status = $1
		ORDER BY transfer_marked_at DESC NULLS LAST`,
		string(sales.PaymentPendingApproval),
	)
}

func (r *SalesRepo) ListCompleted(ctx context.Context) ([]sales.TicketSale, error) {
	return r.selectSales(ctx, `
		SELECT payload FROM ticket_sales
		WHERE payment_status = $1
		ORDER BY created_at ASC`,
		string(sales.PaymentCompleted),
	)
}

// SoldByType sums completed quantities per ticket type.
func (r *SalesRepo) SoldByType(ctx context.Context) (map[sales.TicketType]int, error) {
	var rows []struct {
		TicketType string `db:"ticket_type"`
		Sold       int    `db:"sold"`
	}

	err := sqlx.SelectContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &rows, `
		SELECT ticket_type, COALESCE(SUM(quantity), 0) AS sold FROM ticket_sales
		WHERE payment_status = $1
		GROUP BY ticket_type`,
		string(sales.PaymentCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}

	sold := make(map[sales.TicketType]int, len(rows))
	for _, row := range rows {
		sold[sales.TicketType(row.TicketType)] = row.Sold
	}
	return sold, nil
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
	"reference": "reference",
	"status":    "payment_status",
}

func (r *SalesRepo) List(ctx context.Context, filter sales.Filter) (sales.Page, error) {
	filter = filter.Normalized()

	var (
		conditions []string
		args       []any
	)
	addCondition := func(format string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if filter.Status != "" {
		addCondition("payment_status = $%d", string(filter.Status))
	}
	if filter.TicketType != "" {
		addCondition("ticket_type = $%d", string(filter.TicketType))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		addCondition("search_text LIKE $%d", "%"+strings.ToLower(search)+"%")
	}
	if !filter.From.IsZero() {
		addCondition("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addCondition("created_at <= $%d", filter.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	tr := r.getter.DefaultTrOrDB(ctx, r.db)

	var total int
	if err := sqlx.GetContext(ctx, tr, &total, "SELECT COUNT(*) FROM ticket_sales "+where, args...); err != nil {
		return sales.Page{}, fmt.Errorf("failed to count sales: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT payload FROM ticket_sales %s ORDER BY %s %s LIMIT %d OFFSET %d",
		where,
		sortColumns[filter.SortBy],
		strings.ToUpper(string(filter.SortOrder)),
		filter.Limit,
		filter.Offset(),
	)

	list, err := r.selectSales(ctx, query, args...)
	if err != nil {
		return sales.Page{}, err
	}

	return sales.Page{Sales: list, TotalCount: total}, nil
}

func (r *SalesRepo) selectSales(ctx context.Context, query string, args ...any) ([]sales.TicketSale, error) {
	var payloads [][]byte
	if err := sqlx.SelectContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &payloads, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select sales: %w", err)
	}

	list := make([]sales.TicketSale, 0, len(payloads))
	for _, payload := range payloads {
		sale, err := unmarshalSale(payload)
		if err != nil {
			return nil, err
		}
		list = append(list, sale)
	}
	return list, nil
}
