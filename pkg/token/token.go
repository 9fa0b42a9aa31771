package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JWT header constants required by RFC 7519.
const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Principal is the authenticated subject encoded in a credential.
type Principal struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	Tenant   string `json:"tenant"`
}

// Claims is the wire shape of a credential: principal fields plus the
// registered temporal claims.
type Claims struct {
	ID        string `json:"jti"`
	UserID    string `json:"sub"`
	Username  string `json:"username"`
	Level     int    `json:"level"`
	Tenant    string `json:"tenant"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Principal extracts the principal fields from the claims.
func (c Claims) Principal() Principal {
	return Principal{
		UserID:   c.UserID,
		Username: c.Username,
		Level:    c.Level,
		Tenant:   c.Tenant,
	}
}

// Pair is an access/refresh credential pair issued together at login
// or refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Config holds the signing secret and credential lifetimes.
type Config struct {
	Secret     string        `env:"JWT_SECRET,required"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"360m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"2160h"`
}

// Service signs and verifies credentials with HMAC-SHA256.
// The signing secret lives in memory only and is read-only after startup.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates a credential service from config.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	// Zero means unset; negative lifetimes are allowed so tests can mint
	// already-expired credentials.
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 360 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 90 * 24 * time.Hour
	}
	return &Service{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// Issue produces an access/refresh pair for the principal. Both credentials
// carry the same principal fields and differ only in lifetime.
func (s *Service) Issue(p Principal) (Pair, error) {
	now := time.Now()

	access, err := s.generate(p, now, now.Add(s.accessTTL))
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.generate(p, now, now.Add(s.refreshTTL))
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify parses the credential and enforces the required level.
// Returns ErrInvalid for malformed or tampered tokens, ErrExpired for
// expired ones, and ErrForbidden when the embedded level is below
// requiredLevel.
func (s *Service) Verify(tokenString string, requiredLevel int) (Principal, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return Principal{}, err
	}
	if claims.Level < requiredLevel {
		return Principal{}, ErrForbidden
	}
	return claims.Principal(), nil
}

func (s *Service) generate(p Principal, issuedAt, expiresAt time.Time) (string, error) {
	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", err
	}

	claimsJSON, err := json.Marshal(Claims{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		Username:  p.Username,
		Level:     p.Level,
		Tenant:    p.Tenant,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", err
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

func (s *Service) parse(tokenString string) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalid
	}

	// Constant-time signature comparison prevents timing attacks.
	payload := parts[0] + "." + parts[1]
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalid
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, ErrInvalid
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return Claims{}, ErrInvalid
	}
	// Reject unexpected algorithms to prevent algorithm confusion attacks.
	if hdr.Algorithm != headerAlgorithm {
		return Claims{}, ErrInvalid
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, ErrInvalid
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalid
	}

	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrExpired
	}

	return claims, nil
}

// sign creates a base64url-encoded HMAC-SHA256 signature for the payload.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes without padding as required by RFC 7515.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
