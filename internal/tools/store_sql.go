package tools

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lumen-lms/lumenlms/internal/lti"
)

// NotFound is the sentinel Store implementations return for missing rows.
var NotFound = errors.New("tools: not found")

// SQLStore persists tool registrations and doubles as the launch flow's
// lti.ToolRegistry.
type SQLStore struct {
	DB *sql.DB

	// Issuer is the platform base URL presented to every tool.
	Issuer string
}

const toolColumns = `client_id, name, description, login_url, launch_uri,
	deployment_id, username_field, key_id, active, created_at`

func scanTool(row interface{ Scan(...any) error }) (Tool, error) {
	var t Tool
	var created int64
	err := row.Scan(&t.ClientID, &t.Name, &t.Description, &t.LoginURL, &t.LaunchURI,
		&t.DeploymentID, &t.UsernameField, &t.KeyID, &t.Active, &created)
	if err != nil {
		return Tool{}, err
	}
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, nil
}

func (s *SQLStore) Create(ctx context.Context, t Tool) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO external_tools (`+toolColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ClientID, t.Name, t.Description, t.LoginURL, t.LaunchURI,
		t.DeploymentID, t.UsernameField, t.KeyID, t.Active, t.CreatedAt.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, clientID string) (Tool, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM external_tools WHERE client_id=$1`, clientID)
	t, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Tool{}, NotFound
	}
	return t, err
}

func (s *SQLStore) List(ctx context.Context, offset, limit int) ([]Tool, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+toolColumns+` FROM external_tools
		ORDER BY created_at DESC, client_id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Tool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, t Tool) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE external_tools
		SET name=$2, description=$3, login_url=$4, launch_uri=$5,
		    deployment_id=$6, username_field=$7, key_id=$8, active=$9
		WHERE client_id=$1`,
		t.ClientID, t.Name, t.Description, t.LoginURL, t.LaunchURI,
		t.DeploymentID, t.UsernameField, t.KeyID, t.Active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, clientID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM external_tools WHERE client_id=$1`, clientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound
	}
	return nil
}

// ToolByClientID implements lti.ToolRegistry. Inactive tools are invisible
// to the launch flow, so a disabled registration fails exactly like an
// unknown one.
func (s *SQLStore) ToolByClientID(ctx context.Context, clientID string) (lti.ToolConfig, error) {
	t, err := s.Get(ctx, clientID)
	if err != nil {
		return lti.ToolConfig{}, err
	}
	if !t.Active {
		return lti.ToolConfig{}, NotFound
	}
	return t.Config(s.Issuer), nil
}
