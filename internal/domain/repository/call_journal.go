package repository

import (
	"context"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

// CallJournal defines the interface for recording tool invocations
type CallJournal interface {
	// Record appends a call record
	Record(ctx context.Context, record *entity.CallRecord) error

	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]*entity.CallRecord, error)
}
