package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/google/uuid"
)

// maxCategoryDepth bounds the parent walk so a corrupted chain cannot loop forever.
const maxCategoryDepth = 64

// CategoryRegistry checks category references. It never writes.
type CategoryRegistry struct{}

// AssertCategory returns the category if it exists for ownerID (a user or a group) and its
// direction matches txType. Only income and expense imply a direction.
func (CategoryRegistry) AssertCategory(ctx context.Context, reader portsrepo.CategoryReader, ownerID, categoryID string, txType domain.TransactionType) (*domain.Category, error) {
	category, err := reader.FindCategoryByID(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}
	if expected, ok := txType.CategoryDirection(); ok && category.Type != expected {
		return nil, fmt.Errorf("%w: category %s is %s but a %s transaction needs %s",
			apperrors.ErrTypeMismatch, categoryID, category.Type, txType, expected)
	}
	return category, nil
}

// categoryService implements CategorySvcFacade.
type categoryService struct {
	BaseService
	uow   portsrepo.UnitOfWork
	repos portsrepo.RepositoryProvider
}

// NewCategoryService creates a category service.
func NewCategoryService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, opts ...Option) portssvc.CategorySvcFacade {
	svc := &categoryService{uow: uow, repos: repos}
	svc.apply(opts)
	return svc
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	if !req.Type.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid category type %q", req.Type))
	}

	now := s.now()
	category := domain.Category{
		CategoryID:  uuid.NewString(),
		OwnerID:     userID,
		Name:        req.Name,
		Type:        req.Type,
		ParentID:    req.ParentID,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if category.ParentID != nil {
			if err := checkParent(ctx, repos.CategoryRepo, category); err != nil {
				return err
			}
		}
		return repos.CategoryRepo.SaveCategory(ctx, category)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create category", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Category created successfully", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *categoryService) UpdateCategoryParent(ctx context.Context, userID, categoryID string, req dto.UpdateCategoryParentRequest) (*domain.Category, error) {
	var updated domain.Category
	err := s.uow.Atomic(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.CategoryRepo.FindCategoryByID(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		updated = *current
		updated.ParentID = req.ParentID
		updated.Touch(userID, s.now())

		if updated.ParentID != nil {
			if err := checkParent(ctx, repos.CategoryRepo, updated); err != nil {
				return err
			}
		}
		return repos.CategoryRepo.UpdateCategoryParent(ctx, updated)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update category parent", slog.String("category_id", categoryID))
		return nil, err
	}
	return &updated, nil
}

// checkParent walks the parent chain of category. The parent must share owner and type,
// and the chain must never come back to the category itself.
func checkParent(ctx context.Context, reader portsrepo.CategoryReader, category domain.Category) error {
	parentID := *category.ParentID
	parent, err := reader.FindCategoryByID(ctx, category.OwnerID, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("parent category not found")
		}
		return err
	}
	if parent.Type != category.Type {
		return fmt.Errorf("%w: parent category is %s, child is %s", apperrors.ErrTypeMismatch, parent.Type, category.Type)
	}

	next := parent
	for depth := 0; ; depth++ {
		if next.CategoryID == category.CategoryID {
			return apperrors.ErrCategoryCycle
		}
		if next.ParentID == nil {
			return nil
		}
		if depth >= maxCategoryDepth {
			return fmt.Errorf("%w: parent chain deeper than %d", apperrors.ErrCategoryCycle, maxCategoryDepth)
		}
		next, err = reader.FindCategoryByID(ctx, category.OwnerID, *next.ParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// a dangling ancestor ends the chain
				return nil
			}
			return err
		}
	}
}
