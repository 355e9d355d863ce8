package service

import (
	"context"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
)

// appendRegistre writes one audit row. Registre appends are best-effort and
// happen after the owning transaction commits; callers ignore the error beyond
// logging since the lifecycle transition itself already succeeded.
func appendRegistre(ctx context.Context, repo *repository.RegistreRepository, entityType, entityID, entityCode, action, fromStatut, toStatut, acteurID string, details entity.JSONB) error {
	return repo.Create(ctx, &entity.RegistreEntry{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		EntityCode: entityCode,
		Action:     action,
		FromStatut: fromStatut,
		ToStatut:   toStatut,
		Details:    details,
		ActeurID:   acteurID,
	})
}
