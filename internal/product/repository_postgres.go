package product

import (
	"database/sql"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listProductsQuery = `
		SELECT product_id, title, description, category, price, photo, created_at
		FROM product
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT product_id, title, description, category, price, photo, created_at
		FROM product
		WHERE product_id = $1
	`
	insertProductQuery = `
		INSERT INTO product (title, description, category, price, photo, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING product_id
	`
	deleteProductQuery = `DELETE FROM product WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Product, error) {
	rows, err := r.db.Query(listProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	row := r.db.QueryRow(getProductByIDQuery, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var id int
	err := r.db.QueryRow(
		insertProductQuery,
		p.Title,
		p.Description,
		p.Category,
		p.Price,
		p.Photo,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var photo sql.NullString
	var createdAt time.Time

	if err := scanner.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.Price,
		&photo,
		&createdAt,
	); err != nil {
		return Product{}, err
	}

	if photo.Valid {
		p.Photo = &photo.String
	}
	p.CreatedAt = createdAt
	return p, nil
}
