package usecase

import (
	"context"
	"fmt"

	"github.com/dqplatform/dq-engine/internal/connector"
	"github.com/dqplatform/dq-engine/internal/crypto"
	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type ConnectionUsecase struct {
	repo repository.ConnectionRepository
	box  *crypto.Box
}

func NewConnectionUsecase(repo repository.ConnectionRepository, box *crypto.Box) *ConnectionUsecase {
	return &ConnectionUsecase{repo: repo, box: box}
}

type CreateConnectionInput struct {
	Name        string
	Description string
	Type        domain.ConnectionType
	Config      map[string]any
}

func (u *ConnectionUsecase) CreateConnection(ctx context.Context, input CreateConnectionInput) (*domain.Connection, error) {
	if !input.Type.Valid() {
		return nil, domain.NewValidationError("unknown connection type %q", input.Type)
	}

	sealed, err := u.box.Seal(input.Config, input.Type)
	if err != nil {
		return nil, fmt.Errorf("seal connection config: %w", err)
	}

	c := &domain.Connection{
		Name:            input.Name,
		Description:     input.Description,
		Type:            input.Type,
		EncryptedConfig: sealed,
		IsActive:        true,
	}
	created, err := u.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	return created, nil
}

func (u *ConnectionUsecase) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return c, nil
}

type ListConnectionsInput struct {
	Cursor string
	Limit  int
}

type ListConnectionsResult struct {
	Connections []*domain.Connection
	NextCursor  *string
}

func (u *ConnectionUsecase) ListConnections(ctx context.Context, input ListConnectionsInput) (ListConnectionsResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListConnectionsInput{Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListConnectionsResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	connections, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListConnectionsResult{}, fmt.Errorf("list connections: %w", err)
	}

	var nextCursor *string
	if len(connections) == limit+1 {
		last := connections[limit]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		connections = connections[:limit]
	}
	return ListConnectionsResult{Connections: connections, NextCursor: nextCursor}, nil
}

type UpdateConnectionInput struct {
	ID          string
	Name        string
	Description string
	Config      map[string]any // nil means "leave config unchanged"
	IsActive    bool
}

func (u *ConnectionUsecase) UpdateConnection(ctx context.Context, input UpdateConnectionInput) (*domain.Connection, error) {
	existing, err := u.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.IsActive = input.IsActive

	if input.Config != nil {
		sealed, err := u.box.Seal(input.Config, existing.Type)
		if err != nil {
			return nil, fmt.Errorf("seal connection config: %w", err)
		}
		existing.EncryptedConfig = sealed
	}

	updated, err := u.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update connection: %w", err)
	}
	return updated, nil
}

func (u *ConnectionUsecase) DeleteConnection(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}

// TestConnection opens a real connector against the stored config and pings
// it, surfacing a plain pass/fail with the error text rather than a full
// Go error — a bad credential is an expected outcome here, not a bug.
type TestConnectionResult struct {
	Success bool
	Error   string
}

func (u *ConnectionUsecase) TestConnection(ctx context.Context, id string) (TestConnectionResult, error) {
	connType, config, err := u.resolveConnection(ctx, id)
	if err != nil {
		return TestConnectionResult{}, err
	}

	conn, err := connector.Open(ctx, connType, config)
	if err != nil {
		return TestConnectionResult{Success: false, Error: err.Error()}, nil
	}
	defer conn.Close(ctx)

	if err := conn.Test(ctx); err != nil {
		return TestConnectionResult{Success: false, Error: err.Error()}, nil
	}
	return TestConnectionResult{Success: true}, nil
}

// ListSchemas enumerates schemas on the source, per the
// GET /{id}/schemas endpoint.
func (u *ConnectionUsecase) ListSchemas(ctx context.Context, id string) ([]string, error) {
	connType, config, err := u.resolveConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := connector.Open(ctx, connType, config)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	defer conn.Close(ctx)

	schemas, err := conn.ListSchemas(ctx)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	return schemas, nil
}

// ListTables enumerates tables in schema.
func (u *ConnectionUsecase) ListTables(ctx context.Context, id, schema string) ([]connector.TableInfo, error) {
	connType, config, err := u.resolveConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := connector.Open(ctx, connType, config)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	defer conn.Close(ctx)

	tables, err := conn.ListTables(ctx, schema)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	return tables, nil
}

// ListColumns enumerates columns of schema.table.
func (u *ConnectionUsecase) ListColumns(ctx context.Context, id, schema, table string) ([]connector.ColumnInfo, error) {
	connType, config, err := u.resolveConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := connector.Open(ctx, connType, config)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	defer conn.Close(ctx)

	columns, err := conn.ListColumns(ctx, schema, table)
	if err != nil {
		return nil, domain.NewConnectionFailureError(id, err)
	}
	return columns, nil
}

// resolveConnection loads and decrypts a stored connection's config — the
// one place outside the executor path that needs plaintext credentials.
func (u *ConnectionUsecase) resolveConnection(ctx context.Context, id string) (domain.ConnectionType, map[string]any, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("get connection: %w", err)
	}
	config, err := u.box.Open(c.EncryptedConfig)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt connection config: %w", err)
	}
	return c.Type, config, nil
}

// ResolveForExecution exposes the decrypted type+config to the scheduler's
// worker and the check preview, which need it to build an executor.Input
// without duplicating the crypto dependency.
func (u *ConnectionUsecase) ResolveForExecution(ctx context.Context, id string) (domain.ConnectionType, map[string]any, error) {
	return u.resolveConnection(ctx, id)
}
