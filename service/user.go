package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"costeo/auth"
	"costeo/model"
	"costeo/utils"
)

type UserInput struct {
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	HotelID  *uint  `json:"hotel_id"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResult struct {
	TokenPair
	User *model.User `json:"user"`
}

type UserService struct {
	db        *gorm.DB
	tokens    *utils.TokenManager
	accessTTL time.Duration
}

func NewUserService(db *gorm.DB, tokens *utils.TokenManager, accessTTL time.Duration) *UserService {
	return &UserService{db: db, tokens: tokens, accessTTL: accessTTL}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) issue(u *model.User) (*LoginResult, error) {
	claims := utils.Claims{UserID: u.ID, Role: string(u.Role)}
	if u.HotelID != nil {
		claims.HotelID = *u.HotelID
	}
	access, refresh, err := s.tokens.GenerateTokens(claims)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int64(s.accessTTL.Seconds()),
		},
		User: u,
	}, nil
}

// Login checks the credentials of an active user and issues a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.Password, password); err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, auth.ErrInvalidCredentials
	}
	return s.issue(&u)
}

// Refresh trades a refresh token for a new pair. The user is reloaded so
// role or hotel changes and deactivation take effect.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, claims.UserID).Error; err != nil {
		return nil, utils.ErrInvalidToken
	}
	if !u.Active {
		return nil, utils.ErrInvalidToken
	}
	return s.issue(&u)
}

func (s *UserService) Me(ctx context.Context, scope Scope) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("Hotel").First(&u, scope.UserID).Error; err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (s *UserService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.User], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.User{})
	q = scope.restrict(q, "users.hotel_id")
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(users.full_name) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}
	if f.Active != nil {
		q = q.Where("users.active = ?", *f.Active)
	}
	if f.HotelID != 0 {
		q = q.Where("users.hotel_id = ?", f.HotelID)
	}
	return paginate[model.User](q, f)
}

func (s *UserService) Get(ctx context.Context, scope Scope, id uint) (*model.User, error) {
	var u model.User
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id")
	if err := q.First(&u, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error
	return count > 0, err
}

// assign resolves the role and hotel a user will have. Managers may only
// place managers and staff in their own hotel.
func (s *UserService) assign(ctx context.Context, scope Scope, role model.UserRole, hotelID *uint) (*uint, error) {
	if !role.Valid() {
		return nil, invalid("role", "must be admin, manager or staff")
	}
	if !scope.Admin() && role == model.RoleAdmin {
		return nil, ErrForbidden
	}
	if role == model.RoleAdmin {
		return nil, nil
	}

	var requested uint
	if hotelID != nil {
		requested = *hotelID
	}
	target, err := scope.targetHotel(requested)
	if err != nil {
		return nil, err
	}
	if err := requireHotel(s.db.WithContext(ctx), target); err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *UserService) Create(ctx context.Context, scope Scope, in UserInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	role := model.UserRole(in.Role)
	if role == "" {
		role = model.RoleStaff
	}
	hotelID, err := s.assign(ctx, scope, role, in.HotelID)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, invalid("password", err.Error())
	}
	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	u := model.User{
		Email:    email,
		FullName: strings.TrimSpace(in.FullName),
		Password: hash,
		Role:     role,
		HotelID:  hotelID,
		Active:   true,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (s *UserService) Update(ctx context.Context, scope Scope, id uint, in UserInput) (*model.User, error) {
	u, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.Admin() && u.Role == model.RoleAdmin {
		return nil, ErrForbidden
	}

	if email := normalizeEmail(in.Email); email != "" && email != u.Email {
		taken, err := s.emailTaken(ctx, email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrConflict
		}
		u.Email = email
	}
	if name := strings.TrimSpace(in.FullName); name != "" {
		u.FullName = name
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, invalid("password", err.Error())
		}
		u.Password = hash
	}
	if in.Role != "" || in.HotelID != nil {
		role := u.Role
		if in.Role != "" {
			role = model.UserRole(in.Role)
		}
		hotelID := in.HotelID
		if hotelID == nil {
			hotelID = u.HotelID
		}
		assigned, err := s.assign(ctx, scope, role, hotelID)
		if err != nil {
			return nil, err
		}
		u.Role = role
		u.HotelID = assigned
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func (s *UserService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.User, error) {
	if id == scope.UserID && !active {
		return nil, invalid("active", "cannot deactivate your own account")
	}
	u, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.Admin() && u.Role == model.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Model(u).Update("active", active).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, scope Scope, id uint) error {
	if id == scope.UserID {
		return invalid("id", "cannot delete your own account")
	}
	u, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if !scope.Admin() && u.Role == model.RoleAdmin {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(u).Error
}
