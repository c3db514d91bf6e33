package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// SecurityContext carries the signing material and the clock. Injecting the
// clock keeps expiry behavior testable without touching package globals.
type SecurityContext struct {
	Secret []byte
	Method jwt.SigningMethod
	Now    func() time.Time
}

// NewSecurityContext resolves the configured algorithm name ("HS256",
// "HS384", "HS512") to a signing method.
func NewSecurityContext(secret, algorithm string) (SecurityContext, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return SecurityContext{}, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return SecurityContext{}, fmt.Errorf("signing algorithm %q is not symmetric", algorithm)
	}
	return SecurityContext{
		Secret: []byte(secret),
		Method: method,
		Now:    time.Now,
	}, nil
}

// Issuer mints and verifies the two stateless token shapes: login sessions
// and project invitations. Both share the signing mechanism; they differ in
// claim shape and in how verification failures are reported.
type Issuer struct {
	sec        SecurityContext
	sessionTTL time.Duration
	inviteTTL  time.Duration
}

func NewIssuer(sec SecurityContext, sessionTTL, inviteTTL time.Duration) *Issuer {
	if sec.Now == nil {
		sec.Now = time.Now
	}
	return &Issuer{sec: sec, sessionTTL: sessionTTL, inviteTTL: inviteTTL}
}

type sessionClaims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

type inviteClaims struct {
	ProjectID int64 `json:"project_id"`
	jwt.RegisteredClaims
}

// Session is the identity recovered from a verified session token.
type Session struct {
	UserID int64
	Login  string
}

// Invite is the claim pair recovered from a verified invite token.
type Invite struct {
	ProjectID int64
	UserID    int64
}

func (i *Issuer) IssueSession(userID int64, login string) (string, error) {
	now := i.sec.Now()
	claims := sessionClaims{
		Login: login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(i.sec.Method, claims).SignedString(i.sec.Secret)
}

// VerifySession reports every failure as ErrInvalidCredential: a caller with
// a bad session gets one answer regardless of why the token is bad.
func (i *Issuer) VerifySession(tokenString string) (Session, error) {
	var claims sessionClaims
	if err := i.parse(tokenString, &claims); err != nil {
		return Session{}, domain.ErrInvalidCredential
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Login == "" {
		return Session{}, domain.ErrInvalidCredential
	}
	return Session{UserID: userID, Login: claims.Login}, nil
}

func (i *Issuer) IssueInvite(projectID, invitedUserID int64) (string, error) {
	now := i.sec.Now()
	claims := inviteClaims{
		ProjectID: projectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(invitedUserID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.inviteTTL)),
		},
	}
	return jwt.NewWithClaims(i.sec.Method, claims).SignedString(i.sec.Secret)
}

// VerifyInvite distinguishes expiry from every other failure so the caller
// can offer "request a new invite" instead of a generic invalid-link error.
func (i *Issuer) VerifyInvite(tokenString string) (Invite, error) {
	var claims inviteClaims
	if err := i.parse(tokenString, &claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Invite{}, domain.ErrExpiredToken
		}
		return Invite{}, domain.ErrMalformedToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ProjectID == 0 {
		return Invite{}, domain.ErrMalformedToken
	}
	return Invite{ProjectID: claims.ProjectID, UserID: userID}, nil
}

// InviteTTL is exposed so invitation mails can state how long the link lives.
func (i *Issuer) InviteTTL() time.Duration {
	return i.inviteTTL
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{i.sec.Method.Alg()}),
		jwt.WithTimeFunc(i.sec.Now),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.sec.Secret, nil
	})
	return err
}
