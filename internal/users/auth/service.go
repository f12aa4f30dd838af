// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/orvia/internal/platform/apperr"
	"github.com/taibuivan/orvia/internal/platform/mail"
	"github.com/taibuivan/orvia/internal/platform/metrics"
	"github.com/taibuivan/orvia/internal/platform/sec"
	"github.com/taibuivan/orvia/internal/platform/validate"
	"github.com/taibuivan/orvia/pkg/uuidv7"
)

// # Configuration

// Config carries the tunable parameters of the authentication flow.
type Config struct {
	// SessionSecret keys the token hash; rotating it invalidates all sessions.
	SessionSecret string

	OTPTTL         time.Duration
	OTPMaxAttempts int
	ResendCooldown time.Duration
	SessionTTL     time.Duration

	// IsAdmin reports allow-list membership for a normalized email.
	IsAdmin func(email string) bool
}

// # Service

// Service implements the passwordless authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to code hashing, attempt
// lock-out, or session issuance must be reviewed before release.
type Service struct {
	userRepository      UserRepository
	challengeRepository ChallengeRepository
	sessionRepository   SessionRepository
	mailer              mail.Sender
	config              Config
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	challengeRepo ChallengeRepository,
	sessionRepo SessionRepository,
	mailer mail.Sender,
	config Config,
) *Service {
	return &Service{
		userRepository:      userRepo,
		challengeRepository: challengeRepo,
		sessionRepository:   sessionRepo,
		mailer:              mailer,
		config:              config,
	}
}

// # Code Request Flow

// RequestCodeInput holds the data required to start a verification challenge.
type RequestCodeInput struct {
	Email    string
	Mode     ChallengeMode
	FullName string
}

/*
RequestCode issues a one-time code to an email address.

Description: Validates the caller's intent against the account state, enforces
the resend cooldown, stores a fresh challenge (superseding any prior one for
the same email), and only then hands the plaintext code to the mail
collaborator. The challenge is durable before delivery is attempted, so a
delivery failure never leaves a code the server does not know about.

Parameters:
  - context: context.Context
  - input: RequestCodeInput

Returns:
  - err: ValidationError, NotFound (login without account), Conflict (signup
    with existing account), RateLimited (cooldown), or Internal (delivery).
*/
func (service *Service) RequestCode(context context.Context, input RequestCodeInput) error {
	email := NormalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	if err := validate.New().
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		OneOf(FieldMode, string(input.Mode), string(ModeLogin), string(ModeSignup)).
		MaxLen(FieldFullName, fullName, MaxFullNameLength).
		Err(); err != nil {
		return err
	}

	// The declared intent must match the account state.
	_, err := service.userRepository.FindByEmail(context, email)
	switch {
	case input.Mode == ModeLogin && apperr.IsNotFound(err):
		return apperr.NotFoundMessage("No account exists for this email, sign up first")
	case input.Mode == ModeSignup && err == nil:
		return apperr.Conflict("An account with this email already exists, log in instead")
	case err != nil && !apperr.IsNotFound(err):
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	code, err := sec.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}
	salt, err := sec.GenerateSalt(OTPSaltBytes)
	if err != nil {
		return fmt.Errorf("auth_service_salt_generation_failed: %w", err)
	}
	codeHash, err := sec.HashOTPCode(salt, code)
	if err != nil {
		return fmt.Errorf("auth_service_code_hash_failed: %w", err)
	}

	now := time.Now().UTC()
	challenge := &OTPChallenge{
		ID:              uuidv7.New(),
		Email:           email,
		Mode:            input.Mode,
		CodeHash:        codeHash,
		Salt:            salt,
		PendingFullName: fullName,
		Attempts:        0,
		CreatedAt:       now,
		ExpiresAt:       now.Add(service.config.OTPTTL),
	}

	// Replace enforces the resend cooldown inside the same transaction that
	// stores the challenge, and the challenge is durable before delivery.
	// Mail is a blocking external call and must not sit between a state
	// check and its matching write.
	if err := service.challengeRepository.Replace(context, challenge, service.config.ResendCooldown); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("auth_service_challenge_store_failed: %w", err)
	}
	metrics.OTPIssuedTotal.WithLabelValues(string(input.Mode)).Inc()

	message := mail.OTPMessage(email, string(input.Mode), code, service.config.OTPTTL)
	if err := service.mailer.Send(context, message); err != nil {
		// The stored challenge stays valid; the caller may retry delivery
		// after the cooldown elapses.
		return apperr.Internal(fmt.Errorf("auth_service_mail_delivery_failed: %w", err))
	}

	return nil
}

// # Verification Flow

// VerifyCodeInput holds the data required to redeem a verification challenge.
type VerifyCodeInput struct {
	Email string
	Code  string

	// IPAddress and UserAgent are bound to the issued session for audit.
	IPAddress string
	UserAgent string
}

/*
VerifyCode redeems a one-time code and establishes a session.

Description: Charges one attempt against the active challenge, then on a
correct code consumes it, finds or creates the user, stamps last-login, and
issues a fresh bearer session.

Parameters:
  - context: context.Context
  - input: VerifyCodeInput

Returns:
  - *User: the authenticated (possibly just-created) user.
  - string: the raw session token, for cookie transport only.
  - err: ValidationError, NotFound (no challenge), Gone (expired),
    Unauthorized (wrong code), or storage errors.
*/
func (service *Service) VerifyCode(context context.Context, input VerifyCodeInput) (*User, string, error) {
	email := NormalizeEmail(input.Email)
	code := strings.TrimSpace(input.Code)

	if err := validate.New().
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldCode, code).
		Custom(FieldCode, len(code) != sec.OTPCodeDigits, "Code must be 6 digits").
		Err(); err != nil {
		return nil, "", err
	}

	// The whole attempt (expiry check, charge, comparison, consumption) is
	// one repository transaction. Every attempt is charged, correct or not.
	now := time.Now().UTC()
	challenge, outcome, err := service.challengeRepository.Charge(
		context, email, now, service.config.OTPMaxAttempts,
		func(challenge *OTPChallenge) bool {
			return sec.CheckOTPCode(challenge.Salt, code, challenge.CodeHash)
		},
	)
	if err != nil {
		if apperr.IsNotFound(err) {
			metrics.OTPVerificationsTotal.WithLabelValues("missing").Inc()
			return nil, "", err
		}
		return nil, "", fmt.Errorf("auth_service_attempt_charge_failed: %w", err)
	}

	switch outcome {
	case ChargeExpired:
		metrics.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		return nil, "", apperr.Gone("This code has expired, request a new one")
	case ChargeLocked:
		// Lock-out: the challenge was consumed by exhaustion.
		metrics.OTPVerificationsTotal.WithLabelValues("locked").Inc()
		return nil, "", apperr.Unauthorized("Incorrect verification code")
	case ChargeMismatch:
		metrics.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		return nil, "", apperr.Unauthorized("Incorrect verification code")
	}

	user, err := service.findOrCreateUser(context, email, challenge.PendingFullName, now)
	if err != nil {
		return nil, "", err
	}

	rawToken, err := service.IssueSession(context, user.ID, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, "", err
	}

	metrics.OTPVerificationsTotal.WithLabelValues("ok").Inc()
	return user, rawToken, nil
}

// findOrCreateUser resolves the account for a verified email, creating it on
// first contact and filling the full name only when previously unset.
func (service *Service) findOrCreateUser(context context.Context, email, pendingFullName string, now time.Time) (*User, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	switch {
	case apperr.IsNotFound(err):
		user = &User{
			ID:          uuidv7.New(),
			Email:       email,
			FullName:    pendingFullName,
			CreatedAt:   now,
			LastLoginAt: &now,
		}
		if err := service.userRepository.Create(context, user); err != nil {
			return nil, fmt.Errorf("auth_service_user_create_failed: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	if user.FullName == "" && pendingFullName != "" {
		user.FullName = pendingFullName
	}
	user.LastLoginAt = &now
	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_user_update_failed: %w", err)
	}
	return user, nil
}

// # Session Lifecycle

/*
IssueSession mints a fresh opaque bearer token for a user.

Description: Generates a high-entropy token, stores only its keyed hash with a
fixed TTL, and returns the raw value. The raw token exists nowhere but in the
response path.

Parameters:
  - context: context.Context
  - userID: owner of the session.
  - ipAddress: captured for audit only.
  - userAgent: captured for audit only.

Returns:
  - string: the raw bearer token.
  - err: entropy or storage errors.
*/
func (service *Service) IssueSession(context context.Context, userID, ipAddress, userAgent string) (string, error) {
	rawToken, err := sec.GenerateSecureToken(SessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    userID,
		TokenHash: sec.HashToken(service.config.SessionSecret, rawToken),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(service.config.SessionTTL),
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return "", fmt.Errorf("auth_service_session_store_failed: %w", err)
	}
	return rawToken, nil
}

/*
ResolveSession maps a presented bearer token to its principal.

Description: Recomputes the keyed hash, loads a live session by it, and builds
the caller identity including allow-list admin membership. Resolution happens
fresh on every request; sessions are never extended by use.

Parameters:
  - context: context.Context
  - rawToken: the bearer token presented by the client.

Returns:
  - *sec.Principal: the resolved caller identity.
  - err: Unauthorized when the token is unknown or expired.
*/
func (service *Service) ResolveSession(context context.Context, rawToken string) (*sec.Principal, error) {
	if rawToken == "" {
		return nil, apperr.Unauthorized("Missing session token")
	}

	tokenHash := sec.HashToken(service.config.SessionSecret, rawToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid session token")
		}
		return nil, fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		return nil, apperr.Unauthorized("Session has expired")
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Session owner no longer exists")
		}
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	return &sec.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		SessionID: session.ID,
		IsAdmin:   service.config.IsAdmin(user.Email),
	}, nil
}

/*
CurrentUser loads the full account record behind a principal.

Parameters:
  - context: context.Context
  - userID: identifier from the resolved principal.

Returns:
  - *User: the account record.
  - err: NotFound or storage errors.
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
Logout revokes the session behind a presented token.

Description: Idempotent. Revoking an unknown, expired, or already-revoked
token succeeds silently.

Parameters:
  - context: context.Context
  - rawToken: the bearer token presented by the client.

Returns:
  - err: storage errors only.
*/
func (service *Service) Logout(context context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	tokenHash := sec.HashToken(service.config.SessionSecret, rawToken)
	if err := service.sessionRepository.Delete(context, tokenHash); err != nil {
		return fmt.Errorf("auth_service_session_delete_failed: %w", err)
	}
	return nil
}

// # Helpers

// NormalizeEmail lower-cases and trims an address so every lookup and store
// key agrees on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
