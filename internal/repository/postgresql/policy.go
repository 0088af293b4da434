package postgresql

import (
	"context"
	"fmt"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type policyRepository struct {
	db *database.DB
}

const settingsColumns = `
	require_network, require_geofence, require_token,
	allowed_ips, office_locations,
	weekly_schedule, exceptions,
	grace_period_minutes, token_expiry_seconds, token_gen, data_retention_days,
	updated_at
`

// GetSettings implements policy.Repository. The singleton settings row is
// created lazily with the defaults on first read.
func (p *policyRepository) GetSettings(ctx context.Context) (policy.Settings, error) {
	s, err := p.readSettings(ctx)
	if err == nil {
		return s, nil
	}
	if err != pgx.ErrNoRows {
		return policy.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return p.seedDefaultSettings(ctx)
}

func (p *policyRepository) readSettings(ctx context.Context) (policy.Settings, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + settingsColumns + ` FROM policy_settings WHERE id = 1`

	var s policy.Settings
	err := q.QueryRow(ctx, query).Scan(
		&s.RequireNetwork, &s.RequireGeofence, &s.RequireToken,
		&s.AllowedIPs, &s.OfficeLocations,
		&s.WeeklySchedule, &s.Exceptions,
		&s.GracePeriodMinutes, &s.TokenExpirySeconds, &s.TokenGen, &s.DataRetentionDays,
		&s.UpdatedAt,
	)
	return s, err
}

func (p *policyRepository) seedDefaultSettings(ctx context.Context) (policy.Settings, error) {
	q := GetQuerier(ctx, p.db)
	def := policy.DefaultSettings()

	// DO NOTHING keeps the row a concurrent first reader may have seeded.
	query := `
		INSERT INTO policy_settings (
			id, require_network, require_geofence, require_token,
			allowed_ips, office_locations,
			weekly_schedule, exceptions,
			grace_period_minutes, token_expiry_seconds, token_gen, data_retention_days,
			updated_at
		) VALUES (
			1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW()
		) ON CONFLICT (id) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		def.RequireNetwork, def.RequireGeofence, def.RequireToken,
		def.AllowedIPs, def.OfficeLocations,
		def.WeeklySchedule, def.Exceptions,
		def.GracePeriodMinutes, def.TokenExpirySeconds, def.TokenGen, def.DataRetentionDays,
	)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to seed default settings: %w", err)
	}

	s, err := p.readSettings(ctx)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to read settings after seeding: %w", err)
	}
	return s, nil
}

// SaveSettings implements policy.Repository.
func (p *policyRepository) SaveSettings(ctx context.Context, s policy.Settings) (policy.Settings, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO policy_settings (
			id, require_network, require_geofence, require_token,
			allowed_ips, office_locations,
			weekly_schedule, exceptions,
			grace_period_minutes, token_expiry_seconds, token_gen, data_retention_days,
			updated_at
		) VALUES (
			1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW()
		) ON CONFLICT (id) DO UPDATE SET
			require_network = EXCLUDED.require_network,
			require_geofence = EXCLUDED.require_geofence,
			require_token = EXCLUDED.require_token,
			allowed_ips = EXCLUDED.allowed_ips,
			office_locations = EXCLUDED.office_locations,
			weekly_schedule = EXCLUDED.weekly_schedule,
			exceptions = EXCLUDED.exceptions,
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			token_expiry_seconds = EXCLUDED.token_expiry_seconds,
			token_gen = EXCLUDED.token_gen,
			data_retention_days = EXCLUDED.data_retention_days,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		s.RequireNetwork, s.RequireGeofence, s.RequireToken,
		s.AllowedIPs, s.OfficeLocations,
		s.WeeklySchedule, s.Exceptions,
		s.GracePeriodMinutes, s.TokenExpirySeconds, s.TokenGen, s.DataRetentionDays,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	return s, nil
}

const teamPolicyColumns = `
	department,
	use_custom_ips, allowed_ips,
	use_custom_offices, office_locations,
	use_custom_token, use_custom_schedule, weekly_schedule,
	updated_at
`

func scanTeamPolicy(row pgx.Row) (policy.TeamPolicy, error) {
	var tp policy.TeamPolicy
	err := row.Scan(
		&tp.Department,
		&tp.UseCustomIPs, &tp.AllowedIPs,
		&tp.UseCustomOffices, &tp.OfficeLocations,
		&tp.UseCustomToken, &tp.UseCustomSchedule, &tp.WeeklySchedule,
		&tp.UpdatedAt,
	)
	return tp, err
}

// GetTeamPolicy implements policy.Repository.
func (p *policyRepository) GetTeamPolicy(ctx context.Context, department string) (policy.TeamPolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + teamPolicyColumns + ` FROM team_policies WHERE department = $1`

	tp, err := scanTeamPolicy(q.QueryRow(ctx, query, department))
	if err != nil {
		if err == pgx.ErrNoRows {
			return policy.TeamPolicy{}, policy.ErrTeamPolicyNotFound
		}
		return policy.TeamPolicy{}, fmt.Errorf("failed to get team policy: %w", err)
	}

	return tp, nil
}

// SaveTeamPolicy implements policy.Repository.
func (p *policyRepository) SaveTeamPolicy(ctx context.Context, tp policy.TeamPolicy) (policy.TeamPolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO team_policies (
			department,
			use_custom_ips, allowed_ips,
			use_custom_offices, office_locations,
			use_custom_token, use_custom_schedule, weekly_schedule,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		) ON CONFLICT (department) DO UPDATE SET
			use_custom_ips = EXCLUDED.use_custom_ips,
			allowed_ips = EXCLUDED.allowed_ips,
			use_custom_offices = EXCLUDED.use_custom_offices,
			office_locations = EXCLUDED.office_locations,
			use_custom_token = EXCLUDED.use_custom_token,
			use_custom_schedule = EXCLUDED.use_custom_schedule,
			weekly_schedule = EXCLUDED.weekly_schedule,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		tp.Department,
		tp.UseCustomIPs, tp.AllowedIPs,
		tp.UseCustomOffices, tp.OfficeLocations,
		tp.UseCustomToken, tp.UseCustomSchedule, tp.WeeklySchedule,
	).Scan(&tp.UpdatedAt)
	if err != nil {
		return policy.TeamPolicy{}, fmt.Errorf("failed to save team policy: %w", err)
	}

	return tp, nil
}

// ListTeamPolicies implements policy.Repository.
func (p *policyRepository) ListTeamPolicies(ctx context.Context) ([]policy.TeamPolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + teamPolicyColumns + ` FROM team_policies ORDER BY department`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team policies: %w", err)
	}
	defer rows.Close()

	var policies []policy.TeamPolicy
	for rows.Next() {
		tp, err := scanTeamPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team policy: %w", err)
		}
		policies = append(policies, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team policies: %w", err)
	}

	return policies, nil
}

// GetToken implements policy.Repository.
func (p *policyRepository) GetToken(ctx context.Context, scope string) (policy.VerificationToken, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT scope, code, issued_at, ttl_millis FROM verification_tokens WHERE scope = $1`

	var t policy.VerificationToken
	err := q.QueryRow(ctx, query, scope).Scan(&t.Scope, &t.Code, &t.IssuedAt, &t.TTLMillis)
	if err != nil {
		if err == pgx.ErrNoRows {
			return policy.VerificationToken{}, policy.ErrTokenNotFound
		}
		return policy.VerificationToken{}, fmt.Errorf("failed to get token: %w", err)
	}

	return t, nil
}

// SetToken implements policy.Repository.
func (p *policyRepository) SetToken(ctx context.Context, token policy.VerificationToken) error {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO verification_tokens (scope, code, issued_at, ttl_millis)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope) DO UPDATE SET
			code = EXCLUDED.code,
			issued_at = EXCLUDED.issued_at,
			ttl_millis = EXCLUDED.ttl_millis
	`

	if _, err := q.Exec(ctx, query, token.Scope, token.Code, token.IssuedAt, token.TTLMillis); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}

	return nil
}

// ClearToken implements policy.Repository.
func (p *policyRepository) ClearToken(ctx context.Context, scope string) error {
	q := GetQuerier(ctx, p.db)

	if _, err := q.Exec(ctx, `DELETE FROM verification_tokens WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	return nil
}

// ListTokens implements policy.Repository.
func (p *policyRepository) ListTokens(ctx context.Context) ([]policy.VerificationToken, error) {
	q := GetQuerier(ctx, p.db)

	rows, err := q.Query(ctx, `SELECT scope, code, issued_at, ttl_millis FROM verification_tokens`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []policy.VerificationToken
	for rows.Next() {
		var t policy.VerificationToken
		if err := rows.Scan(&t.Scope, &t.Code, &t.IssuedAt, &t.TTLMillis); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return tokens, nil
}

// RenameTeam implements policy.Repository. The override document and the team
// token move together or not at all.
func (p *policyRepository) RenameTeam(ctx context.Context, oldName, newName string) error {
	return WithTransaction(ctx, p.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM team_policies WHERE department = $1)`, newName).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check team name: %w", err)
		}
		if exists {
			return policy.ErrTeamNameTaken
		}

		if _, err := tx.Exec(ctx, `UPDATE team_policies SET department = $2, updated_at = NOW() WHERE department = $1`, oldName, newName); err != nil {
			return fmt.Errorf("failed to rename team policy: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE verification_tokens SET scope = $2 WHERE scope = $1`, oldName, newName); err != nil {
			return fmt.Errorf("failed to rename token scope: %w", err)
		}

		return nil
	})
}

func NewPolicyRepository(db *database.DB) policy.Repository {
	return &policyRepository{db: db}
}
