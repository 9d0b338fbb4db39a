package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vmarchenko/contacts-api/internal/domain"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const contactColumns = `id, owner_id, name, email, phone, birthday, about, created_at, updated_at`

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `
		INSERT INTO contacts (owner_id, name, email, phone, birthday, about)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + contactColumns

	row := r.pool.QueryRow(ctx, query,
		contact.OwnerID, contact.Name, contact.Email,
		contact.Phone, contact.Birthday, contact.About,
	)
	return scanContact(row)
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at ASC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanContact(row)
}

// Update matches on id AND owner_id, so a contact owned by someone else
// looks identical to a missing one.
func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, birthday = $6, about = $7,
		    updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + contactColumns

	row := r.pool.QueryRow(ctx, query,
		contact.ID, contact.OwnerID, contact.Name, contact.Email,
		contact.Phone, contact.Birthday, contact.About,
	)
	return scanContact(row)
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, days int) ([]*domain.BirthdayReminder, error) {
	// Compare month/day against a generated series of upcoming dates so the
	// window works across a year boundary.
	query := `
		SELECT u.email, c.name, c.birthday
		FROM contacts c
		JOIN users u ON u.id = c.owner_id
		WHERE u.is_verified
		  AND c.birthday IS NOT NULL
		  AND to_char(c.birthday, 'MM-DD') IN (
		      SELECT to_char(CURRENT_DATE + offs, 'MM-DD')
		      FROM generate_series(0, $1::int) AS offs
		  )
		ORDER BY u.email, c.name`

	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("upcoming birthdays: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.BirthdayReminder
	for rows.Next() {
		var rem domain.BirthdayReminder
		if err := rows.Scan(&rem.OwnerEmail, &rem.ContactName, &rem.Birthday); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	return reminders, rows.Err()
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone,
		&c.Birthday, &c.About, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	return &c, nil
}
