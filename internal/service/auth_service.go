package service

import (
	"context"
	"errors"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/apierror"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/config"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/dto"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/model"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService maneja login con JWT y la administración de usuarios.
type AuthService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) *AuthService {
	return &AuthService{repo: repo, cfg: cfg}
}

// Login valida credenciales y emite el par access/refresh. El mensaje de
// error no distingue usuario inexistente de contraseña incorrecta.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apierror.NotAuthorized("credenciales inválidas")
	}
	if !user.Activo {
		return nil, apierror.NotAuthorized("credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.NotAuthorized("credenciales inválidas")
	}

	if err := s.repo.TouchUltimoAcceso(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("usuario", user.Username).Msg("no se pudo registrar el último acceso")
	}

	return s.emitirTokens(user)
}

// Refresh canjea un refresh token válido por un par nuevo.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.NotAuthorized("refresh token inválido o expirado")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.NotAuthorized("token mal formado")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apierror.NotAuthorized("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apierror.NotAuthorized("token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, apierror.NotAuthorized("usuario no encontrado o inactivo")
	}
	return s.emitirTokens(user)
}

func (s *AuthService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	access, err := s.generarToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generarToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Usuario:      user.Username,
		Nombre:       user.NombreCompleto,
		Rol:          user.Rol,
	}, nil
}

func (s *AuthService) generarToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Rol,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ── Administración de usuarios ───────────────────────────────────────────────

func (s *AuthService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*model.Usuario, error) {
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apierror.Conflict("el username ya está en uso")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Username:       req.Username,
		NombreCompleto: req.Nombre,
		PasswordHash:   string(hash),
		Rol:            req.Rol,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("username", user.Username).Str("rol", user.Rol).Msg("usuario creado")
	return user, nil
}

func (s *AuthService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	return s.repo.List(ctx, incluirInactivos)
}

func (s *AuthService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*model.Usuario, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("usuario no encontrado")
		}
		return nil, err
	}
	if req.Nombre != nil {
		user.NombreCompleto = *req.Nombre
	}
	if req.Rol != nil {
		user.Rol = *req.Rol
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *AuthService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}
