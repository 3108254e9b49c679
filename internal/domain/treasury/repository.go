package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingFilter narrows the pending-requests listing
type PendingFilter struct {
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	PaymentDateUntil *time.Time
}

// RequestRepository persists treasury requests.
type RequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	FindByExternalID(ctx context.Context, externalID string) (*Request, error)
	// FindByExternalIDForUpdate takes a row lock inside the ambient
	// transaction so concurrent generate calls serialize per request.
	FindByExternalIDForUpdate(ctx context.Context, externalID string) (*Request, error)
	Create(ctx context.Context, request *Request) error
	Save(ctx context.Context, request *Request) error
	// ListPending returns PENDING and VALIDATED requests matching the
	// filter, oldest first.
	ListPending(ctx context.Context, filter PendingFilter) ([]Request, error)
}
