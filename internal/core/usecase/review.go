package usecase

import (
	"context"
	"fmt"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// ReviewUseCase records the human verdict for a document parked in the
// review stage. Approval promotes the original into the completed
// stage; rejection only flips the status.
type ReviewUseCase struct {
	repo  ports.DocumentRepository
	store ports.StagedObjectStore
}

func NewReviewUseCase(repo ports.DocumentRepository, store ports.StagedObjectStore) *ReviewUseCase {
	return &ReviewUseCase{repo: repo, store: store}
}

func (uc *ReviewUseCase) Decide(ctx context.Context, documentID string, approved bool) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	next := domain.StatusHumanReviewRejected
	if approved {
		next = domain.StatusHumanReviewApproved
	}
	if err := domain.Transition(doc.Status, next); err != nil {
		return err
	}

	if approved {
		key := domain.BlobPath(doc.ProjectID, doc.ID, doc.Filename)
		if err := uc.store.CopyBetweenStages(ctx, domain.StageReview, domain.StageCompleted, key); err != nil {
			return fmt.Errorf("promote approved document: %w", err)
		}
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, next, ""); err != nil {
		return fmt.Errorf("persist review verdict: %w", err)
	}
	return nil
}
