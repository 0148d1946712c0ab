package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

// UserProfile is a user together with their declared skills.
type UserProfile struct {
	*types.User
	Skills []*types.UserSkill `json:"skills"`
}

// UpdateProfileInput holds optional profile edits. Nil or blank values are ignored,
// except Bio which may be cleared.
type UpdateProfileInput struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	Country     *string `json:"country"`
	TimeZone    *string `json:"timeZone"`
	Language    *string `json:"language"`
	PhoneNumber *string `json:"phoneNumber"`
}

type UserSearchInput struct {
	Query   string
	SkillID uuid.UUID
	Country string
	Page    int
	Limit   int
}

type UserSearchResult struct {
	Users      []*types.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

type SetUserStatusInput struct {
	IsActive  *bool `json:"isActive"`
	IsBlocked *bool `json:"isBlocked"`
}

type UserService interface {
	GetMe(ctx context.Context) (*UserProfile, error)
	UpdateMe(ctx context.Context, in UpdateProfileInput) (*UserProfile, error)
	UploadPhoto(ctx context.Context, raw []byte) (*types.User, error)
	GetPublicProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	Search(ctx context.Context, in UserSearchInput) (*UserSearchResult, error)
	SetStatus(ctx context.Context, userID uuid.UUID, in SetUserStatusInput) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userSkillRepo repos.UserSkillRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userSkillRepo repos.UserSkillRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		userSkillRepo: userSkillRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
	}
}

var errUserNotFound = apierr.Newf(http.StatusNotFound, "not_found", "User not found")

func requireUserID(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Newf(http.StatusUnauthorized, "unauthorized", "Authentication required")
	}
	return id, nil
}

func (us *userService) GetMe(ctx context.Context) (*UserProfile, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	return us.profile(dbctx.Background(ctx), userID, false)
}

func (us *userService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	return us.profile(dbctx.Background(ctx), userID, true)
}

func (us *userService) profile(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) (*UserProfile, error) {
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || (activeOnly && (!user.IsActive || user.IsBlocked)) {
		return nil, errUserNotFound
	}
	skills, err := us.userSkillRepo.ListByUserIDs(dbc, []uuid.UUID{user.ID})
	if err != nil {
		return nil, fmt.Errorf("load user skills: %w", err)
	}
	if skills == nil {
		skills = []*types.UserSkill{}
	}
	return &UserProfile{User: user, Skills: skills}, nil
}

func (us *userService) UpdateMe(ctx context.Context, in UpdateProfileInput) (*UserProfile, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		if s := strings.TrimSpace(*v); s != "" {
			updates[col] = s
		}
	}
	set("first_name", in.FirstName)
	set("last_name", in.LastName)
	set("display_name", in.DisplayName)
	set("country", in.Country)
	set("time_zone", in.TimeZone)
	set("language", in.Language)
	set("phone_number", in.PhoneNumber)
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}

	dbc := dbctx.Background(ctx)
	if err := us.userRepo.UpdateFields(dbc, userID, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return us.profile(dbc, userID, false)
}

func (us *userService) UploadPhoto(ctx context.Context, raw []byte) (*types.User, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apierr.Validation(apierr.FieldError{Field: "photo", Message: "Photo is required"})
	}
	if us.avatarService == nil {
		return nil, apierr.Newf(http.StatusServiceUnavailable, "storage_unavailable", "Photo uploads are not available")
	}
	dbc := dbctx.Background(ctx)
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, errUserNotFound
	}
	if err := us.avatarService.CreateAndUploadUserAvatarFromImage(dbc, user, raw); err != nil {
		if errors.Is(err, ErrUnsupportedImage) {
			return nil, apierr.Validation(apierr.FieldError{Field: "photo", Message: "Unsupported image"})
		}
		return nil, err
	}
	return user, nil
}

func (us *userService) Search(ctx context.Context, in UserSearchInput) (*UserSearchResult, error) {
	page, limit, offset := pageWindow(in.Page, in.Limit)
	users, total, err := us.userRepo.Search(dbctx.Background(ctx), repos.UserSearchFilter{
		Query:   in.Query,
		SkillID: in.SkillID,
		Country: in.Country,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if users == nil {
		users = []*types.User{}
	}
	return &UserSearchResult{Users: users, Pagination: newPagination(total, page, limit)}, nil
}

// SetStatus changes activation or block flags. Deactivating or blocking revokes
// every refresh token the user holds.
func (us *userService) SetStatus(ctx context.Context, userID uuid.UUID, in SetUserStatusInput) (*types.User, error) {
	if in.IsActive == nil && in.IsBlocked == nil {
		return nil, apierr.Validation(apierr.FieldError{Field: "isActive", Message: "isActive or isBlocked is required"})
	}
	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := us.userRepo.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserNotFound
		}
		if in.IsActive != nil {
			if err := us.userRepo.SetActive(dbc, userID, *in.IsActive); err != nil {
				return err
			}
			user.IsActive = *in.IsActive
		}
		if in.IsBlocked != nil {
			if err := us.userRepo.SetBlocked(dbc, userID, *in.IsBlocked); err != nil {
				return err
			}
			user.IsBlocked = *in.IsBlocked
		}
		if !user.IsActive || user.IsBlocked {
			if err := us.userTokenRepo.DeleteByUserIDs(dbc, []uuid.UUID{userID}); err != nil {
				return err
			}
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	us.log.Info("user status changed", "user_id", userID, "active", out.IsActive, "blocked", out.IsBlocked, "admin_id", ctxutil.UserID(ctx))
	return out, nil
}
