package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/veiculos/internal/model"
)

// DefaultTokenTTL はトークンの既定有効期間（発行から24時間）。
const DefaultTokenTTL = 24 * time.Hour

// MinSigningKeyLength はHS256署名鍵の最小バイト長。
const MinSigningKeyLength = 32

var (
	// ErrMissingSigningKey は署名鍵が設定されていないことを表す。
	// 既定鍵へのフォールバックは行わない。
	ErrMissingSigningKey = errors.New("jwt signing key is not configured")
	// ErrWeakSigningKey は署名鍵がMinSigningKeyLengthより短いことを表す。
	ErrWeakSigningKey = errors.New("jwt signing key is too short")
	// ErrInvalidToken は署名・形式・クレームのいずれかが不正なトークンを表す。
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired は有効期限を過ぎたトークンを表す。
	ErrTokenExpired = errors.New("token expired")
)

// Claims はセッショントークンに埋め込むクレーム。
// ロールはカスタムクレーム（Perfil）と標準のroleクレームの両方に格納する。
type Claims struct {
	Email  string     `json:"Email"`
	Perfil model.Role `json:"Perfil"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig はトークン発行・検証の設定。
type TokenConfig struct {
	Secret string
	TTL    time.Duration    // 0の場合はDefaultTokenTTL
	Now    func() time.Time // nilの場合はtime.Now。テストで時刻を固定するために使用する
}

func (c TokenConfig) normalize() (TokenConfig, error) {
	if c.Secret == "" {
		return c, ErrMissingSigningKey
	}
	if len(c.Secret) < MinSigningKeyLength {
		return c, fmt.Errorf("%w: need at least %d bytes", ErrWeakSigningKey, MinSigningKeyLength)
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTokenTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c, nil
}

// TokenIssuer は認証済み管理者に対してHS256署名付きトークンを発行する。
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。署名鍵が未設定の場合はエラーを返す。
func NewTokenIssuer(config TokenConfig) (*TokenIssuer, error) {
	cfg, err := config.normalize()
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{key: []byte(cfg.Secret), ttl: cfg.TTL, now: cfg.Now}, nil
}

// Issue は管理者のemailとロールを含むトークンを発行し、トークン文字列と有効期限を返す。
func (i *TokenIssuer) Issue(admin *model.Administrator) (string, time.Time, error) {
	if admin == nil || admin.Email == "" {
		return "", time.Time{}, fmt.Errorf("cannot issue token without administrator email")
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		Email:  admin.Email,
		Perfil: admin.Role,
		Role:   admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// TokenVerifier はトークンの署名・有効期限・ロールを検証する。I/Oを伴わない。
type TokenVerifier struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenVerifier はTokenVerifierを生成する。署名鍵が未設定の場合はエラーを返す。
func NewTokenVerifier(config TokenConfig) (*TokenVerifier, error) {
	cfg, err := config.normalize()
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{
		key: []byte(cfg.Secret),
		ttl: cfg.TTL,
		now: cfg.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(cfg.Now),
		),
	}, nil
}

// Verify はトークン文字列を検証し、クレームを返す。
// 発行からTTLを超えたトークンはexpの値に関わらず拒否する。
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.IssuedAt == nil || v.now().Sub(claims.IssuedAt.Time) > v.ttl {
		return nil, ErrTokenExpired
	}

	role, ok := model.ParseRole(string(claims.Role))
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	claims.Role = role
	claims.Perfil = role

	return claims, nil
}
