package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// GardenRepository handles garden, membership, and invite data access.
type GardenRepository struct {
	db *sqlx.DB
}

// NewGardenRepository creates a new GardenRepository.
func NewGardenRepository(db *sqlx.DB) *GardenRepository {
	return &GardenRepository{db: db}
}

const gardenColumns = `id, owner_id, name, description, postal_code, created_at, updated_at`

// FindByID retrieves a garden by ID.
func (r *GardenRepository) FindByID(ctx context.Context, id int64) (*domain.Garden, error) {
	var garden domain.Garden
	err := r.db.GetContext(ctx, &garden,
		`SELECT `+gardenColumns+` FROM gardens WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find garden %d: %w", id, err)
	}
	return &garden, nil
}

// ListForUser returns gardens the user owns or is a member of.
func (r *GardenRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Garden, error) {
	gardens := []domain.Garden{}
	err := r.db.SelectContext(ctx, &gardens,
		`SELECT g.id, g.owner_id, g.name, g.description, g.postal_code, g.created_at, g.updated_at
		 FROM gardens g
		 JOIN garden_members m ON m.garden_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list gardens for user %d: %w", userID, err)
	}
	return gardens, nil
}

// ListWithPostalCode returns all gardens that can be weather-checked.
func (r *GardenRepository) ListWithPostalCode(ctx context.Context) ([]domain.Garden, error) {
	gardens := []domain.Garden{}
	err := r.db.SelectContext(ctx, &gardens,
		`SELECT `+gardenColumns+` FROM gardens
		 WHERE postal_code IS NOT NULL AND postal_code <> ''
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list gardens with postal code: %w", err)
	}
	return gardens, nil
}

// Create inserts a garden and its owner membership in one transaction.
func (r *GardenRepository) Create(ctx context.Context, garden domain.Garden) (*domain.Garden, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create garden: %w", err)
	}
	defer tx.Rollback()

	var created domain.Garden
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO gardens (owner_id, name, description, postal_code)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+gardenColumns,
		garden.OwnerID, garden.Name, garden.Description, garden.PostalCode,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("insert garden: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO garden_members (garden_id, user_id, role) VALUES ($1, $2, $3)`,
		created.ID, garden.OwnerID, domain.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create garden: %w", err)
	}
	return &created, nil
}

// Update applies a partial update and returns the new row.
func (r *GardenRepository) Update(ctx context.Context, id int64, name, description, postalCode *string) (*domain.Garden, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if postalCode != nil {
		sets = append(sets, fmt.Sprintf("postal_code = $%d", n))
		args = append(args, *postalCode)
		n++
	}
	args = append(args, id)

	var garden domain.Garden
	query := fmt.Sprintf(
		`UPDATE gardens SET %s WHERE id = $%d RETURNING `+gardenColumns,
		strings.Join(sets, ", "), n)
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&garden)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update garden %d: %w", id, err)
	}
	return &garden, nil
}

// Delete removes a garden and cascades to its contents.
func (r *GardenRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gardens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete garden %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MemberRole returns the caller's role in a garden, or ErrNotFound when
// the user is not a member.
func (r *GardenRepository) MemberRole(ctx context.Context, gardenID, userID int64) (domain.MemberRole, error) {
	var role domain.MemberRole
	err := r.db.GetContext(ctx, &role,
		`SELECT role FROM garden_members WHERE garden_id = $1 AND user_id = $2`,
		gardenID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("member role: %w", err)
	}
	return role, nil
}

// ListMembers returns the membership roster for a garden.
func (r *GardenRepository) ListMembers(ctx context.Context, gardenID int64) ([]domain.GardenMember, error) {
	members := []domain.GardenMember{}
	err := r.db.SelectContext(ctx, &members,
		`SELECT garden_id, user_id, role, created_at
		 FROM garden_members WHERE garden_id = $1 ORDER BY created_at`, gardenID)
	if err != nil {
		return nil, fmt.Errorf("list members for garden %d: %w", gardenID, err)
	}
	return members, nil
}

// AddMember inserts a membership row. The composite primary key makes
// duplicate membership a conflict.
func (r *GardenRepository) AddMember(ctx context.Context, gardenID, userID int64, role domain.MemberRole) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO garden_members (garden_id, user_id, role) VALUES ($1, $2, $3)`,
		gardenID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (r *GardenRepository) RemoveMember(ctx context.Context, gardenID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM garden_members WHERE garden_id = $1 AND user_id = $2`,
		gardenID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateInvite inserts a pending invite. Duplicate (garden, email)
// pairs conflict.
func (r *GardenRepository) CreateInvite(ctx context.Context, invite domain.GardenInvite) (*domain.GardenInvite, error) {
	var created domain.GardenInvite
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO garden_invites (garden_id, email, role, token)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, garden_id, email, role, token, accepted, created_at`,
		invite.GardenID, invite.Email, invite.Role, invite.Token,
	).StructScan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return &created, nil
}

// FindInviteByToken retrieves a pending invite by its token.
func (r *GardenRepository) FindInviteByToken(ctx context.Context, token string) (*domain.GardenInvite, error) {
	var invite domain.GardenInvite
	err := r.db.GetContext(ctx, &invite,
		`SELECT id, garden_id, email, role, token, accepted, created_at
		 FROM garden_invites WHERE token = $1 AND NOT accepted`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return &invite, nil
}

// MarkInviteAccepted flips the accepted flag.
func (r *GardenRepository) MarkInviteAccepted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE garden_invites SET accepted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	return nil
}
