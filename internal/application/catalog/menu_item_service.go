package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ImageStorage resolves menu images to public URLs and issues upload URLs
type ImageStorage interface {
	// PublicURL returns the URL clients use to fetch an image. Absolute URLs are returned unchanged.
	PublicURL(key string) string
	// GenerateUploadURL returns a presigned URL for uploading key
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
}

// MenuItemCache is a read-through cache for single menu item lookups.
// Implementations log and swallow their own failures.
type MenuItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*MenuItemResponse, bool)
	Set(ctx context.Context, item *MenuItemResponse)
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

const imageKeyPrefix = "menu-items"

// MenuItemService handles menu catalog operations
type MenuItemService struct {
	txScope         unitofwork.TransactionScope
	menuItemRepo    catalog.MenuItemRepository
	images          ImageStorage
	cache           MenuItemCache
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewMenuItemService creates a new MenuItemService
func NewMenuItemService(
	txScope unitofwork.TransactionScope,
	menuItemRepo catalog.MenuItemRepository,
	images ImageStorage,
) *MenuItemService {
	return &MenuItemService{
		txScope:      txScope,
		menuItemRepo: menuItemRepo,
		images:       images,
	}
}

// SetCache sets the menu item cache
func (s *MenuItemService) SetCache(cache MenuItemCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MenuItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *MenuItemService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create adds a new enabled menu item to the catalog
func (s *MenuItemService) Create(ctx context.Context, req MenuItemRequest) (*MenuItemResponse, error) {
	if err := validatePrice(req); err != nil {
		return nil, err
	}

	var item *catalog.MenuItem
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		item, err = catalog.NewMenuItem(
			req.Name,
			s.images.PublicURL(req.Image),
			req.Description,
			req.Price,
			req.stock(),
			req.attributeSpecs(),
		)
		if err != nil {
			return err
		}

		if err := ensureUniqueName(ctx, repos.MenuItemRepo(), item.Name, nil); err != nil {
			return err
		}
		return repos.MenuItemRepo().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Menu item created", zap.String("menu_item_id", item.ID.String()), zap.String("name", item.Name))

	resp := ToMenuItemResponse(item)
	return &resp, nil
}

// Update replaces a menu item's fields. Items that appear in an unpaid bill cannot be changed.
func (s *MenuItemService) Update(ctx context.Context, id uuid.UUID, req MenuItemRequest) (*MenuItemResponse, error) {
	if err := validatePrice(req); err != nil {
		return nil, err
	}

	var item *catalog.MenuItem
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		item, err = repos.MenuItemRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainErrorf(shared.CodeNotFound, "Menu item not found with ID: %s", id)
			}
			return err
		}

		inUnpaid, err := repos.BillRepo().ExistsUnpaidLineForMenuItem(ctx, id)
		if err != nil {
			return err
		}
		if inUnpaid {
			return shared.NewDomainError(shared.CodeItemInUnpaidBill, "Unable to update menu item! It exists in the unpaid bill")
		}

		if err := item.Update(
			req.Name,
			s.images.PublicURL(req.Image),
			req.Description,
			req.Price,
			req.stock(),
			req.attributeSpecs(),
		); err != nil {
			return err
		}

		if err := ensureUniqueName(ctx, repos.MenuItemRepo(), item.Name, &item.ID); err != nil {
			return err
		}
		return repos.MenuItemRepo().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	resp := ToMenuItemResponse(item)
	return &resp, nil
}

// Delete removes a menu item that never appeared on a bill, and disables one that did.
func (s *MenuItemService) Delete(ctx context.Context, id uuid.UUID) (*DeleteMenuItemResponse, error) {
	var (
		item    *catalog.MenuItem
		outcome DeleteOutcome
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		item, err = repos.MenuItemRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainErrorf(shared.CodeNotFound, "Can not found menu item with id: %s", id)
			}
			return err
		}
		if !item.Enabled {
			return shared.NewDomainError(shared.CodeDisabledItem, "Can't delete disabled menu item")
		}

		inUnpaid, err := repos.BillRepo().ExistsUnpaidLineForMenuItem(ctx, id)
		if err != nil {
			return err
		}
		if inUnpaid {
			return shared.NewDomainErrorf(shared.CodeItemInUnpaidBill, "Cannot delete menu item with id %s. It exists in unpaid bills.", id)
		}

		lines, err := repos.BillRepo().CountLinesByMenuItem(ctx, id)
		if err != nil {
			return err
		}
		if lines == 0 {
			outcome = DeleteOutcomeDeleted
			return repos.MenuItemRepo().Delete(ctx, id)
		}

		outcome = DeleteOutcomeDisabled
		if err := item.Disable(); err != nil {
			return err
		}
		return repos.MenuItemRepo().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	if outcome == DeleteOutcomeDisabled {
		s.publish(ctx, item.GetDomainEvents()...)
		item.ClearDomainEvents()
		if s.businessMetrics != nil {
			s.businessMetrics.RecordMenuItemDisabled(ctx)
		}
	}

	logger.L(ctx).Info("Menu item removed",
		zap.String("menu_item_id", id.String()),
		zap.String("outcome", string(outcome)),
	)

	return &DeleteMenuItemResponse{ID: id, Outcome: outcome}, nil
}

// GetByID returns a menu item, served from cache when possible
func (s *MenuItemService) GetByID(ctx context.Context, id uuid.UUID) (*MenuItemResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, id); ok {
			return cached, nil
		}
	}

	item, err := s.menuItemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Can not found menu item with id: %s", id)
		}
		return nil, err
	}

	resp := ToMenuItemResponse(item)
	if s.cache != nil {
		s.cache.Set(ctx, &resp)
	}
	return &resp, nil
}

// List returns every menu item in creation order
func (s *MenuItemService) List(ctx context.Context) ([]MenuItemResponse, error) {
	items, err := s.menuItemRepo.FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}
	return ToMenuItemResponses(items), nil
}

// ListPage returns one page of menu items. A search key that matches nothing is reported as not found.
func (s *MenuItemService) ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[MenuItemResponse], error) {
	total, err := s.menuItemRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 && filter.Search != "" {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Can not found menu item with keyword: %s", filter.Search)
	}

	items, err := s.menuItemRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToMenuItemResponses(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

// ImageUploadURL issues a presigned URL for uploading a menu image.
// The returned key is what clients send as the image of a menu item.
func (s *MenuItemService) ImageUploadURL(ctx context.Context, req ImageUploadRequest) (*ImageUploadResponse, error) {
	ext := strings.ToLower(path.Ext(req.FileName))
	key := fmt.Sprintf("%s/%s%s", imageKeyPrefix, uuid.New().String(), ext)

	uploadURL, expiresAt, err := s.images.GenerateUploadURL(ctx, key, req.ContentType, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image upload url: %w", err)
	}

	return &ImageUploadResponse{
		UploadURL: uploadURL,
		ImageKey:  key,
		ImageURL:  s.images.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *MenuItemService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
}

func (s *MenuItemService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish menu item events", zap.Error(err))
	}
}

func ensureUniqueName(ctx context.Context, repo catalog.MenuItemRepository, name string, excludeID *uuid.UUID) error {
	exists, err := repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainErrorf(shared.CodeDuplicateMenuItemName, "Menu item with name %s already exists.", name)
	}
	return nil
}

func validatePrice(req MenuItemRequest) error {
	if req.Price.LessThan(MinPrice) || req.Price.GreaterThan(MaxPrice) {
		return shared.NewDomainErrorf(shared.CodeValidation, "Price must be between %s and %s", MinPrice, MaxPrice)
	}
	return nil
}
