package repository

import (
	"context"

	"indoornav/internal/catalog"
	"indoornav/internal/domain"
)

// Repository defines the interface for building data access
type Repository interface {
	// Room directory
	ReplaceCatalog(ctx context.Context, entries []catalog.Entry) error
	ListRooms(ctx context.Context, floor domain.FloorID) ([]catalog.Entry, error)

	// Floors
	SaveFloors(ctx context.Context, floors []domain.FloorInfo) error
	ListFloors(ctx context.Context) ([]domain.FloorInfo, error)

	// Build history
	SaveBuild(ctx context.Context, rec *domain.BuildRecord) error
	LatestBuild(ctx context.Context) (*domain.BuildRecord, error)
	ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error)
	PruneBuilds(ctx context.Context, keep int) (int64, error)

	// Close releases resources
	Close() error
}
