package recipe

import (
	"context"
	"errors"
	"log/slog"

	"foodgram/internal/domain"
	"foodgram/internal/modules/toggle"
	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/metrics"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/repository"
	"foodgram/internal/storage"

	"gorm.io/gorm"
)

type RecipeStore interface {
	Create(ctx context.Context, authorID int64, in repository.RecipeInput) (int64, error)
	Update(ctx context.Context, id int64, in repository.RecipeInput) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id, viewerID int64) (*domain.Recipe, error)
	List(ctx context.Context, f repository.RecipeFilter, viewerID int64, limit, offset int) ([]domain.Recipe, int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// FollowingSet reports which authors the viewer follows.
type FollowingSet interface {
	FollowingSet(ctx context.Context, viewerID int64, targetIDs []int64) (map[int64]bool, error)
}

type ShoppingLister interface {
	ShoppingList(ctx context.Context, userID int64) ([]repository.ShoppingItem, error)
}

type Service struct {
	recipes   RecipeStore
	follows   FollowingSet
	validator *Validator
	images    storage.ImageStore
	favorites *toggle.Machine
	cart      *toggle.Machine
	shopping  ShoppingLister
}

type Deps struct {
	Recipes       RecipeStore
	Follows       FollowingSet
	Validator     *Validator
	Images        storage.ImageStore
	FavoriteStore toggle.Store
	CartStore     interface {
		toggle.Store
		ShoppingLister
	}
}

func NewService(d Deps) *Service {
	return &Service{
		recipes:   d.Recipes,
		follows:   d.Follows,
		validator: d.Validator,
		images:    d.Images,
		shopping:  d.CartStore,
		favorites: toggle.New(toggle.Config{
			Relation:     string(domain.KindFavorite),
			Store:        d.FavoriteStore,
			TargetExists: d.Recipes.Exists,
			IsUnique:     repository.IsUniqueViolation,
			Messages: toggle.Messages{
				TargetNotFound: "recipe not found",
				AlreadyPresent: "recipe is already in favorites",
				NotPresent:     "recipe is not in favorites",
			},
		}),
		cart: toggle.New(toggle.Config{
			Relation:     string(domain.KindShoppingCart),
			Store:        d.CartStore,
			TargetExists: d.Recipes.Exists,
			IsUnique:     repository.IsUniqueViolation,
			Messages: toggle.Messages{
				TargetNotFound: "recipe not found",
				AlreadyPresent: "recipe is already in the shopping cart",
				NotPresent:     "recipe is not in the shopping cart",
			},
		}),
	}
}

func (s *Service) Create(ctx context.Context, authorID int64, req CreateRecipeRequest) (*domain.RecipeView, error) {
	v, err := s.validator.ValidateCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, v)
	if err != nil {
		return nil, err
	}

	id, err := s.recipes.Create(ctx, authorID, v.input)
	if err != nil {
		s.discardImage(ctx, url)
		return nil, apperr.Internal("failed to save recipe", err)
	}
	metrics.RecipeWrites.WithLabelValues("create").Inc()

	return s.Get(ctx, id, authorID)
}

// Update applies req to recipe id. Authorship is checked by the caller.
func (s *Service) Update(ctx context.Context, id, userID int64, req UpdateRecipeRequest) (*domain.RecipeView, error) {
	current, err := s.recipes.GetByID(ctx, id, 0)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("recipe not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load recipe", err)
	}

	v, err := s.validator.ValidateUpdate(ctx, req)
	if err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, v)
	if err != nil {
		return nil, err
	}

	if err := s.recipes.Update(ctx, id, v.input); err != nil {
		s.discardImage(ctx, url)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("recipe not found")
		}
		return nil, apperr.Internal("failed to update recipe", err)
	}
	metrics.RecipeWrites.WithLabelValues("update").Inc()

	if url != "" && current.Image != url {
		s.discardImage(ctx, current.Image)
	}
	return s.Get(ctx, id, userID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.recipes.GetByID(ctx, id, 0)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("recipe not found")
	}
	if err != nil {
		return apperr.Internal("failed to load recipe", err)
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("recipe not found")
		}
		return apperr.Internal("failed to delete recipe", err)
	}
	metrics.RecipeWrites.WithLabelValues("delete").Inc()

	s.discardImage(ctx, current.Image)
	return nil
}

func (s *Service) Get(ctx context.Context, id, viewerID int64) (*domain.RecipeView, error) {
	rec, err := s.recipes.GetByID(ctx, id, viewerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("recipe not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load recipe", err)
	}

	views, err := s.project(ctx, []domain.Recipe{*rec}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) List(ctx context.Context, f repository.RecipeFilter, viewerID int64, p pagination.Params) ([]domain.RecipeView, int64, error) {
	recipes, total, err := s.recipes.List(ctx, f, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list recipes", err)
	}
	views, err := s.project(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// project builds views, resolving author subscriptions for the whole batch
// with one query.
func (s *Service) project(ctx context.Context, recipes []domain.Recipe, viewerID int64) ([]domain.RecipeView, error) {
	authorIDs := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		authorIDs = append(authorIDs, r.AuthorID)
	}
	subscribed, err := s.follows.FollowingSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load subscriptions", err)
	}

	views := make([]domain.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, domain.NewRecipeView(&recipes[i], subscribed[recipes[i].AuthorID]))
	}
	return views, nil
}

func (s *Service) AddFavorite(ctx context.Context, userID, recipeID int64) (*domain.RecipeSummary, error) {
	return s.add(ctx, s.favorites, userID, recipeID)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.favorites.Remove(ctx, userID, recipeID)
}

func (s *Service) AddToCart(ctx context.Context, userID, recipeID int64) (*domain.RecipeSummary, error) {
	return s.add(ctx, s.cart, userID, recipeID)
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.cart.Remove(ctx, userID, recipeID)
}

func (s *Service) add(ctx context.Context, m *toggle.Machine, userID, recipeID int64) (*domain.RecipeSummary, error) {
	if err := m.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	rec, err := s.recipes.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, apperr.Internal("failed to load recipe", err)
	}
	summary := domain.NewRecipeSummary(rec)
	return &summary, nil
}

// ShoppingList renders the aggregated cart of userID.
func (s *Service) ShoppingList(ctx context.Context, userID int64) ([]byte, error) {
	items, err := s.shopping.ShoppingList(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to build shopping list", err)
	}
	return RenderShoppingList(items), nil
}

func (s *Service) storeImage(ctx context.Context, v *validated) (string, error) {
	if v.image == nil {
		return "", nil
	}
	url, err := s.images.Save(ctx, v.image.Data, v.image.ContentType, v.image.Ext)
	if err != nil {
		return "", apperr.Internal("failed to store image", err)
	}
	v.input.Image = &url
	return url, nil
}

// discardImage removes an image no recipe references anymore. Failures only
// leave an orphaned file, so they are logged.
func (s *Service) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		slog.WarnContext(ctx, "failed to delete image", "url", url, "error", err)
	}
}
