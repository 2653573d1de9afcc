package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/toggle"
	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"

	"gorm.io/gorm"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	TakenFields(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
}

type FollowStore interface {
	toggle.Store
	ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error)
	FollowingSet(ctx context.Context, viewerID int64, targetIDs []int64) (map[int64]bool, error)
}

// RecipePreviews loads the recipes shown next to followed authors.
type RecipePreviews interface {
	SummariesByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]domain.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error)
}

type Service struct {
	users   UserStore
	follows FollowStore
	recipes RecipePreviews
	follow  *toggle.Machine
}

func NewService(users UserStore, follows FollowStore, recipes RecipePreviews) *Service {
	return &Service{
		users:   users,
		follows: follows,
		recipes: recipes,
		follow: toggle.New(toggle.Config{
			Relation:     "follow",
			Store:        follows,
			TargetExists: users.Exists,
			IsUnique:     repository.IsUniqueViolation,
			ForbidSelf:   true,
			Messages: toggle.Messages{
				TargetNotFound: "user not found",
				Self:           "you cannot subscribe to yourself",
				AlreadyPresent: "already subscribed to this user",
				NotPresent:     "not subscribed to this user",
			},
		}),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisteredUser, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	emailTaken, usernameTaken, err := s.users.TakenFields(ctx, req.Email, req.Username)
	if err != nil {
		return nil, apperr.Internal("failed to check user", err)
	}
	if emailTaken {
		return nil, apperr.Conflict("a user with this email already exists")
	}
	if usernameTaken {
		return nil, apperr.Conflict("a user with this username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	u := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("a user with this email or username already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", u.ID)
	out := newRegisteredUser(u)
	return &out, nil
}

func (s *Service) List(ctx context.Context, viewerID int64, p pagination.Params) ([]domain.UserView, int64, error) {
	list, total, err := s.users.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list users", err)
	}
	views, err := s.views(ctx, viewerID, list)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *Service) Get(ctx context.Context, id, viewerID int64) (*domain.UserView, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, viewerID, []domain.User{*u})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SetPassword replaces the password after checking the current one. Issued
// tokens stay valid.
func (s *Service) SetPassword(ctx context.Context, userID int64, req SetPasswordRequest) error {
	if err := validator.Struct(req); err != nil {
		return err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return apperr.Validation("current_password", "current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	return nil
}

// Subscriptions lists the authors viewerID follows with up to recipesLimit
// of their newest recipes each (all when recipesLimit <= 0).
func (s *Service) Subscriptions(ctx context.Context, viewerID int64, p pagination.Params, recipesLimit int) ([]domain.AuthorView, int64, error) {
	authors, total, err := s.follows.ListFollowing(ctx, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("failed to list subscriptions", err)
	}
	views, err := s.authorViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *Service) Subscribe(ctx context.Context, viewerID, authorID int64, recipesLimit int) (*domain.AuthorView, error) {
	if err := s.follow.Add(ctx, viewerID, authorID); err != nil {
		return nil, err
	}
	author, err := s.load(ctx, authorID)
	if err != nil {
		return nil, err
	}
	views, err := s.authorViews(ctx, []domain.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) Unsubscribe(ctx context.Context, viewerID, authorID int64) error {
	return s.follow.Remove(ctx, viewerID, authorID)
}

func (s *Service) load(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *Service) views(ctx context.Context, viewerID int64, list []domain.User) ([]domain.UserView, error) {
	ids := make([]int64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.follows.FollowingSet(ctx, viewerID, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load subscriptions", err)
	}

	out := make([]domain.UserView, 0, len(list))
	for i := range list {
		out = append(out, domain.NewUserView(&list[i], subscribed[list[i].ID]))
	}
	return out, nil
}

// authorViews are always built for authors the viewer follows.
func (s *Service) authorViews(ctx context.Context, authors []domain.User, recipesLimit int) ([]domain.AuthorView, error) {
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	previews, err := s.recipes.SummariesByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, apperr.Internal("failed to load recipes", err)
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to count recipes", err)
	}

	out := make([]domain.AuthorView, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		summaries := make([]domain.RecipeSummary, 0, len(previews[a.ID]))
		for j := range previews[a.ID] {
			summaries = append(summaries, domain.NewRecipeSummary(&previews[a.ID][j]))
		}
		out = append(out, domain.AuthorView{
			UserView:     domain.NewUserView(a, true),
			Recipes:      summaries,
			RecipesCount: counts[a.ID],
		})
	}
	return out, nil
}
