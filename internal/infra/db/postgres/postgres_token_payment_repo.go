package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/repository"
)

var _ repository.TokenPaymentRepository = (*tokenPaymentRepo)(nil)

type tokenPaymentRepo struct{ pool *pgxpool.Pool }

func NewTokenPaymentRepo(pool *pgxpool.Pool) *tokenPaymentRepo {
	return &tokenPaymentRepo{pool: pool}
}

const tokenPaymentColumns = `id, session_id, provider, order_ref, payment_id, refund_id, amount, currency, status, reason, created_at, updated_at, paid_at`

func (r *tokenPaymentRepo) Save(ctx context.Context, p *model.TokenPayment) error {
	const q = `
INSERT INTO token_payments (
  id, session_id, provider, order_ref, payment_id, refund_id, amount, currency, status, reason, created_at, updated_at, paid_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  session_id=$2, provider=$3, order_ref=$4, payment_id=$5, refund_id=$6, amount=$7, currency=$8, status=$9, reason=$10, updated_at=$12, paid_at=$13;`

	_, err := r.pool.Exec(ctx, q, p.ID, p.SessionID, p.Provider, p.OrderRef, p.PaymentID, p.RefundID, p.Amount, p.Currency, p.Status, p.Reason, p.CreatedAt, p.UpdatedAt, p.PaidAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// a second record for the same gateway order_ref
			return domain.ErrInvalidArgument
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tokenPaymentRepo) FindByID(ctx context.Context, id string) (*model.TokenPayment, error) {
	const q = `SELECT ` + tokenPaymentColumns + ` FROM token_payments WHERE id=$1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

func (r *tokenPaymentRepo) FindByOrderRef(ctx context.Context, orderRef string) (*model.TokenPayment, error) {
	const q = `SELECT ` + tokenPaymentColumns + ` FROM token_payments WHERE order_ref=$1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, orderRef))
}

func (r *tokenPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, reason string, paidAt *time.Time) error {
	const q = `UPDATE token_payments SET status=$2, reason=$3, paid_at=COALESCE($4, paid_at), updated_at=NOW() WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id, status, reason, paidAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *tokenPaymentRepo) SetPaymentID(ctx context.Context, id, paymentID string) error {
	const q = `UPDATE token_payments SET payment_id=$2, updated_at=NOW() WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id, paymentID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *tokenPaymentRepo) SetRefund(ctx context.Context, id, refundID string) error {
	const q = `UPDATE token_payments SET refund_id=$2, status=$3, updated_at=NOW() WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id, refundID, model.PaymentStatusRefunded)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *tokenPaymentRepo) ListCreatedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error) {
	const q = `SELECT ` + tokenPaymentColumns + ` FROM token_payments
WHERE status=$1 AND created_at <= $2 ORDER BY created_at LIMIT $3;`
	return r.list(ctx, q, model.PaymentStatusCreated, cutoff, limit)
}

func (r *tokenPaymentRepo) ListPaidOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error) {
	const q = `SELECT ` + tokenPaymentColumns + ` FROM token_payments
WHERE status=$1 AND paid_at <= $2 ORDER BY paid_at LIMIT $3;`
	return r.list(ctx, q, model.PaymentStatusPaid, cutoff, limit)
}

func (r *tokenPaymentRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.TokenPayment, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.TokenPayment
	for rows.Next() {
		p, err := scanTokenPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *tokenPaymentRepo) scanOne(row pgx.Row) (*model.TokenPayment, error) {
	p, err := scanTokenPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return p, nil
}

func scanTokenPayment(row pgx.Row) (*model.TokenPayment, error) {
	p := &model.TokenPayment{}
	if err := row.Scan(&p.ID, &p.SessionID, &p.Provider, &p.OrderRef, &p.PaymentID, &p.RefundID, &p.Amount, &p.Currency, &p.Status, &p.Reason, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt); err != nil {
		return nil, err
	}
	return p, nil
}
