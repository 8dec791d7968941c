package contract

import (
	"context"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/repository/specification"
)

type VideoSessionRepository interface {
	Create(ctx context.Context, session *entity.VideoSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VideoSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VideoSession, error)

	// ExpireAllActiveForParticipant retires every active room of the participant.
	ExpireAllActiveForParticipant(ctx context.Context, participantId uint, at time.Time) (int64, error)
	// ExpireMostRecentActive expires only the newest active room of the participant.
	ExpireMostRecentActive(ctx context.Context, participantId uint, at time.Time) (bool, error)
	// CompleteIfOwnedActive completes an active room owned by consultantId.
	CompleteIfOwnedActive(ctx context.Context, id, consultantId uint, at time.Time) (bool, error)
	// ExpireActiveCreatedBefore is the reaper sweep.
	ExpireActiveCreatedBefore(ctx context.Context, cutoff, at time.Time) (int64, error)
}
