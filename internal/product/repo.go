// Package product provides the repository interface and PostgreSQL
// implementation for the catalog.
package product

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Category    string
	Subcategory string
	MinPrice    string
	MaxPrice    string
	Page        int
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// List returns one page of matching products (newest first) and the
	// total number of matches so callers can derive totalPages.
	List(ctx context.Context, q Query) ([]Product, int, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Delete(ctx context.Context, id string) (bool, error)
	Related(ctx context.Context, id string) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `
	p.id, p.name, p.category, COALESCE(p.subcategory,''), p.description,
	p.price::text, COALESCE(p.old_price::text,''), p.images, p.rating,
	p.author_id, COALESCE(u.email,''), COALESCE(u.username,''),
	p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Description,
		&p.Price, &p.OldPrice, &p.Images, &p.Rating,
		&p.AuthorID, &p.AuthorEmail, &p.AuthorName,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, category, subcategory, description, price, old_price, images, rating, author_id, created_at, updated_at)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6::numeric,NULLIF($7,'')::numeric,$8,0,$9,NOW(),NOW())
	`, p.ID, p.Name, p.Category, p.Subcategory, p.Description, p.Price, p.OldPrice, p.Images, p.AuthorID)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

const listFilter = `
	($1 = '' OR p.category = $1)
	AND ($2 = '' OR p.subcategory = $2)
	AND ($3::numeric IS NULL OR p.price >= $3::numeric)
	AND ($4::numeric IS NULL OR p.price <= $4::numeric)`

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	var minPrice, maxPrice any
	if q.MinPrice != "" {
		minPrice = q.MinPrice
	}
	if q.MaxPrice != "" {
		maxPrice = q.MaxPrice
	}

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products p WHERE `+listFilter,
		q.Category, q.Subcategory, minPrice, maxPrice,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE `+listFilter+`
		ORDER BY p.created_at DESC
		LIMIT $5 OFFSET $6
	`, q.Category, q.Subcategory, minPrice, maxPrice, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePrice {
		cmd, err := r.db.Exec(ctx, `
			UPDATE products
			SET name = COALESCE(NULLIF($2,''), name),
			    category = COALESCE(NULLIF($3,''), category),
			    subcategory = NULLIF($4,''),
			    description = COALESCE(NULLIF($5,''), description),
			    price = $6::numeric,
			    old_price = NULLIF($7,'')::numeric,
			    images = CASE WHEN cardinality($8::text[]) > 0 THEN $8::text[] ELSE images END,
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Category, p.Subcategory, p.Description, p.Price, p.OldPrice, p.Images)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    category = COALESCE(NULLIF($3,''), category),
		    subcategory = NULLIF($4,''),
		    description = COALESCE(NULLIF($5,''), description),
		    images = CASE WHEN cardinality($6::text[]) > 0 THEN $6::text[] ELSE images END,
		    updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Category, p.Subcategory, p.Description, p.Images)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Related returns products in the same category or whose name shares any
// word of length > 1 with the target product, excluding the product itself.
func (r *PGRepo) Related(ctx context.Context, id string) ([]Product, error) {
	target, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id <> $1 AND (p.category = $2 OR ($3 <> '' AND p.name ~* $3))
		ORDER BY p.created_at DESC
	`, target.ID, target.Category, NameWordPattern(target.Name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// NameWordPattern builds a case-insensitive alternation of the name's words
// longer than one rune, for the related-products lookup.
func NameWordPattern(name string) string {
	var parts []string
	for _, w := range strings.Fields(name) {
		if utf8.RuneCountInString(w) > 1 {
			parts = append(parts, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(parts, "|")
}
