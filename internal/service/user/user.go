package userservice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/pkg/lib/datauri"
	"foodgram/pkg/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var reservedUsernames = map[string]struct{}{
	"me":            {},
	"admin":         {},
	"administrator": {},
	"root":          {},
	"superuser":     {},
}

const minPasswordLength = 8

type UserStorage interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	PasswordHash(ctx context.Context, userId int64) (string, error)
	UserProfile(ctx context.Context, viewerId, userId int64) (models.User, error)
	ListUsers(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error)
	UpdatePassword(ctx context.Context, userId int64, hash string) error
	UpdateAvatar(ctx context.Context, userId int64, avatar *string) error
	Subscribe(ctx context.Context, subscriberId, authorId int64) error
	Unsubscribe(ctx context.Context, subscriberId, authorId int64) error
	Subscriptions(ctx context.Context, subscriberId int64, limit, offset int) ([]models.Author, int, error)
	RecipesCount(ctx context.Context, authorId int64) (int, error)
	RecipesByAuthors(ctx context.Context, authorIds []int64, perAuthor int) (map[int64][]models.ShortRecipe, error)
}

type UserService struct {
	log     *slog.Logger
	storage UserStorage
	cost    int
}

func New(log *slog.Logger, storage UserStorage) *UserService {
	return &UserService{
		log:     log,
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// NewWithCost lets tests trade hash strength for speed.
func NewWithCost(log *slog.Logger, storage UserStorage, cost int) *UserService {
	s := New(log, storage)
	s.cost = cost
	return s
}

func (s *UserService) Register(ctx context.Context, user models.User, password string) (models.User, error) {
	const op = "service.user.Register"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.User{}, err
	}

	if err := ValidateUsername(user.Username); err != nil {
		return models.User{}, serviceerrors.Wrap(log, op, err, "Invalid username")
	}
	if err := validatePassword(password); err != nil {
		return models.User{}, serviceerrors.Wrap(log, op, err, "Invalid password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		log.Error("Failed to hash password", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = string(hash)

	created, err := s.storage.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, serviceerrors.Wrap(log, op, err, "Failed to create user")
	}
	created.PasswordHash = ""

	return created, nil
}

func (s *UserService) Get(ctx context.Context, viewerId, userId int64) (models.User, error) {
	const op = "service.user.Get"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.User{}, err
	}

	user, err := s.storage.UserProfile(ctx, viewerId, userId)
	if err != nil {
		return models.User{}, serviceerrors.Wrap(log, op, err, "Failed to get user")
	}

	return user, nil
}

func (s *UserService) Me(ctx context.Context, userId int64) (models.User, error) {
	return s.Get(ctx, userId, userId)
}

func (s *UserService) List(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error) {
	const op = "service.user.List"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	users, total, err := s.storage.ListUsers(ctx, viewerId, limit, offset)
	if err != nil {
		return nil, 0, serviceerrors.Wrap(log, op, err, "Failed to list users")
	}

	return users, total, nil
}

func (s *UserService) SetPassword(ctx context.Context, userId int64, current, next string) error {
	const op = "service.user.SetPassword"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	hash, err := s.storage.PasswordHash(ctx, userId)
	if err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to read password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
		return serviceerrors.Wrap(log, op,
			serviceerrors.NewValidationError("current_password", "invalid password"), "Wrong current password")
	}
	if err := validatePassword(next); err != nil {
		return serviceerrors.Wrap(log, op, err, "Invalid new password")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		log.Error("Failed to hash password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, userId, string(newHash)); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to update password")
	}

	return nil
}

// SetAvatar stores a base64 image data URI as the user's avatar.
func (s *UserService) SetAvatar(ctx context.Context, userId int64, dataURI string) (string, error) {
	const op = "service.user.SetAvatar"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return "", err
	}

	if err := datauri.ValidateImage(dataURI); err != nil {
		err = serviceerrors.NewValidationError("avatar", err.Error())
		return "", serviceerrors.Wrap(log, op, err, "Invalid avatar")
	}

	if err := s.storage.UpdateAvatar(ctx, userId, &dataURI); err != nil {
		return "", serviceerrors.Wrap(log, op, err, "Failed to update avatar")
	}

	return dataURI, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userId int64) error {
	const op = "service.user.DeleteAvatar"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	if err := s.storage.UpdateAvatar(ctx, userId, nil); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to delete avatar")
	}

	return nil
}

// Subscribe makes subscriberId follow authorId and returns the author with a
// preview of at most recipesLimit recipes (no limit when <= 0).
func (s *UserService) Subscribe(ctx context.Context, subscriberId, authorId int64, recipesLimit int) (models.Author, error) {
	const op = "service.user.Subscribe"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Author{}, err
	}

	if subscriberId == authorId {
		return models.Author{}, serviceerrors.Wrap(log, op, serviceerrors.ErrSelfSubscription, "Self subscription")
	}

	if err := s.storage.Subscribe(ctx, subscriberId, authorId); err != nil {
		return models.Author{}, serviceerrors.Wrap(log, op, err, "Failed to subscribe")
	}

	user, err := s.storage.UserProfile(ctx, subscriberId, authorId)
	if err != nil {
		return models.Author{}, serviceerrors.Wrap(log, op, err, "Failed to get author")
	}
	count, err := s.storage.RecipesCount(ctx, authorId)
	if err != nil {
		return models.Author{}, serviceerrors.Wrap(log, op, err, "Failed to count recipes")
	}
	recipes, err := s.storage.RecipesByAuthors(ctx, []int64{authorId}, recipesLimit)
	if err != nil {
		return models.Author{}, serviceerrors.Wrap(log, op, err, "Failed to get author recipes")
	}

	author := models.Author{
		User:         user,
		Recipes:      recipes[authorId],
		RecipesCount: count,
	}
	if author.Recipes == nil {
		author.Recipes = []models.ShortRecipe{}
	}

	return author, nil
}

func (s *UserService) Unsubscribe(ctx context.Context, subscriberId, authorId int64) error {
	const op = "service.user.Unsubscribe"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	if err := s.storage.Unsubscribe(ctx, subscriberId, authorId); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to unsubscribe")
	}

	return nil
}

func (s *UserService) Subscriptions(ctx context.Context, subscriberId int64, limit, offset, recipesLimit int) ([]models.Author, int, error) {
	const op = "service.user.Subscriptions"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	authors, total, err := s.storage.Subscriptions(ctx, subscriberId, limit, offset)
	if err != nil {
		return nil, 0, serviceerrors.Wrap(log, op, err, "Failed to list subscriptions")
	}

	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.Id)
	}
	recipes, err := s.storage.RecipesByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, 0, serviceerrors.Wrap(log, op, err, "Failed to get author recipes")
	}

	for i := range authors {
		authors[i].Recipes = recipes[authors[i].Id]
		if authors[i].Recipes == nil {
			authors[i].Recipes = []models.ShortRecipe{}
		}
	}

	return authors, total, nil
}

// ValidateUsername rejects reserved names and anything but letters, digits and _.@+-.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return serviceerrors.NewValidationError("username", "may contain only letters, digits and @/./+/-/_")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return serviceerrors.NewValidationError("username", fmt.Sprintf("%q is reserved", username))
	}
	return nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return serviceerrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}
