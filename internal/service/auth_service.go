package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"super-qa/internal/domain"
	"super-qa/internal/email"
	"super-qa/internal/repository"
)

var (
	ErrMissingFields       = errors.New("missing fields")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrEmailTaken          = errors.New("account already exists")
	ErrSignupConflict      = errors.New("concurrent signup in progress")
	ErrEmailSendFailure    = errors.New("email send failed")
	ErrRateLimited         = errors.New("rate limited")
	ErrInvalidVerification = errors.New("invalid verification link")
	ErrOTPInvalid          = errors.New("otp invalid")
	ErrOTPExpired          = errors.New("otp expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

const (
	otpTTL           = 10 * time.Minute
	emailSendTimeout = 10 * time.Second
)

// AuthService orquesta el ciclo de vida de cuentas: signup pendiente,
// verificación por OTP y signin con password.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tempUsers   repository.TempUserRepository
	hasher      *PasswordHasher
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	appURL      string
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	tempUsers repository.TempUserRepository,
	hasher *PasswordHasher,
	emailSender email.Sender,
	otpLimiter OTPRateLimiter,
	appURL string,
) *AuthService {
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		tempUsers:   tempUsers,
		hasher:      hasher,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		appURL:      strings.TrimRight(appURL, "/"),
	}
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup valida el alta, reemplaza cualquier signup pendiente previo para
// el email ("el más reciente gana") y crea un TempUser con password y OTP
// hasheados. El OTP en texto plano solo viaja en el correo de verificación.
//
// Si el correo no se puede despachar, el TempUser queda creado igual: el
// link de verificación sigue siendo válido, y el fallo se reporta.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (domain.TempUser, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	password := input.Password

	if name == "" || emailAddr == "" || password == "" || input.ConfirmPassword == "" {
		return domain.TempUser{}, ErrMissingFields
	}
	if password != input.ConfirmPassword {
		return domain.TempUser{}, ErrPasswordMismatch
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return domain.TempUser{}, ErrRateLimited
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.TempUser{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.TempUser{}, err
	}

	// Supersede: como mucho un signup pendiente por email.
	if err := s.tempUsers.DeleteByEmail(ctx, emailAddr); err != nil {
		return domain.TempUser{}, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.TempUser{}, err
	}
	code, err := GenerateOTP()
	if err != nil {
		return domain.TempUser{}, err
	}
	otpHash, err := s.hasher.Hash(code)
	if err != nil {
		return domain.TempUser{}, err
	}

	now := time.Now().UTC()
	tempUser := domain.TempUser{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		OTPHash:      otpHash,
		OTPExpiresAt: now.Add(otpTTL),
		CreatedAt:    now,
	}
	if err := s.tempUsers.Create(ctx, tempUser); err != nil {
		// La restricción UNIQUE sobre email es la garantía real contra
		// signups concurrentes; el delete previo es solo best effort.
		if repository.IsUniqueViolation(err) {
			return domain.TempUser{}, ErrSignupConflict
		}
		return domain.TempUser{}, err
	}

	link := s.verificationLink(emailAddr, tempUser.ID)
	sendCtx, cancel := context.WithTimeout(ctx, emailSendTimeout)
	defer cancel()
	if err := s.emailSender.SendVerificationOTP(sendCtx, emailAddr, code, link); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return tempUser, ErrEmailSendFailure
	}
	return tempUser, nil
}

// Verify compara el código contra el hash almacenado y, si coincide y no
// expiró, promueve el TempUser a User permanente en una transacción.
// Un id inexistente cubre tanto links inválidos como signups ya
// consumidos o reemplazados.
func (s *AuthService) Verify(ctx context.Context, tempUserID, emailAddr, code string) (domain.User, error) {
	tempUserID = strings.TrimSpace(tempUserID)
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if tempUserID == "" || emailAddr == "" {
		return domain.User{}, ErrInvalidVerification
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	tempUser, err := s.tempUsers.GetByID(ctx, tempUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidVerification
		}
		return domain.User{}, err
	}

	if time.Now().UTC().After(tempUser.OTPExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !s.hasher.Verify(code, tempUser.OTPHash) {
		return domain.User{}, ErrOTPInvalid
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         tempUser.Name,
		Email:        tempUser.Email,
		PasswordHash: tempUser.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.PromoteTempUser(ctx, user, tempUser.ID); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// Signin autentica por email y password. Email desconocido y password
// incorrecto devuelven el mismo error, para no permitir enumerar cuentas.
func (s *AuthService) Signin(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// VerificationPath arma la ruta relativa de verificación para un signup.
func VerificationPath(emailAddr, tempUserID string) string {
	params := url.Values{"email": {emailAddr}, "id": {tempUserID}}
	return "/verify?" + params.Encode()
}

func (s *AuthService) verificationLink(emailAddr, tempUserID string) string {
	return fmt.Sprintf("%s%s", s.appURL, VerificationPath(emailAddr, tempUserID))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
