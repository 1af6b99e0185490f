package order

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, items, total, status, notes, submission_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (submission_id) DO NOTHING
		RETURNING order_id
	`
	getOrderBySubmissionQuery = `
		SELECT order_id, user_id, items, total, status, notes, submission_id, created_at, updated_at
		FROM orders
		WHERE submission_id = $1
	`
	getOrderByIDQuery = `
		SELECT order_id, user_id, items, total, status, notes, submission_id, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`
	updateOrderStatusQuery = `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND status = $4
	`
	orderExistsQuery = `SELECT 1 FROM orders WHERE order_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}

	var id int
	err = r.db.QueryRow(
		insertOrderQuery,
		o.UserID,
		items,
		o.Total,
		string(o.Status),
		o.Notes,
		o.SubmissionID,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		// retry of an already-recorded submission: hand back the
		// original order instead of inserting a duplicate
		row := r.db.QueryRow(getOrderBySubmissionQuery, o.SubmissionID)
		return scanOrder(row)
	}
	if err != nil {
		return Order{}, err
	}
	o.ID = id
	return o, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	row := r.db.QueryRow(getOrderByIDQuery, id)
	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) List(f Filter) ([]Order, error) {
	q := `SELECT order_id, user_id, items, total, status, notes, submission_id, created_at, updated_at FROM orders`
	args := []any{}
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
			return
		}
		where += " AND " + cond
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		and("status = ANY($" + strconv.Itoa(len(args)) + ")")
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		and("user_id = $" + strconv.Itoa(len(args)))
	}

	direction := "DESC"
	if f.Ascending {
		direction = "ASC"
	}
	q += where + " ORDER BY created_at " + direction + ", order_id " + direction

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus writes the new status only while the stored status still
// equals `from`. Zero rows affected means either the order vanished or
// another writer got there first; the two cases map to ErrNotFound and
// ErrStatusConflict respectively.
func (r *PostgresRepository) UpdateStatus(id int, from, to Status, at time.Time) error {
	result, err := r.db.Exec(updateOrderStatusQuery, string(to), at, id, string(from))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var one int
	if err := r.db.QueryRow(orderExistsQuery, id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	o := Order{}
	var items []byte
	var status string
	var notes sql.NullString
	var submissionID sql.NullString
	var createdAt, updatedAt time.Time

	if err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.Total,
		&status,
		&notes,
		&submissionID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Order{}, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	if notes.Valid {
		o.Notes = notes.String
	}
	if submissionID.Valid {
		o.SubmissionID = submissionID.String
	}
	o.CreatedAt = createdAt
	o.UpdatedAt = updatedAt
	return o, nil
}
