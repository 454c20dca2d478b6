// Пакет auth — аутентификация Planner Module: хэши паролей, API-токены
// HS256 и зашифрованные cookie-сессии UI.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer — значение iss в выпускаемых токенах.
const TokenIssuer = "planner-module"

// tokenLeeway — допустимое расхождение часов при проверке exp/nbf.
const tokenLeeway = 30 * time.Second

// ErrInvalidToken — токен не прошёл проверку подписи или срока действия.
var ErrInvalidToken = errors.New("невалидный или просроченный токен")

// Identity — аутентифицированный пользователь.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// Claims — claims API-токена.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity возвращает пользователя из claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}

// TokenManager выпускает и проверяет API-токены.
//
// Подпись всегда текущим секретом; проверка принимает также предыдущий
// секрет (ротация). Ключ выбирается по kid из заголовка токена.
type TokenManager struct {
	secret []byte
	kid    string
	ttl    time.Duration
	keys   keyfunc.Keyfunc
	now    func() time.Time
}

// NewTokenManager создаёт TokenManager. previous может быть пустым.
func NewTokenManager(secret, previous string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("пустой секрет подписи токенов")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("некорректное время жизни токена: %s", ttl)
	}

	secrets := []string{secret}
	if previous != "" && previous != secret {
		secrets = append(secrets, previous)
	}

	storage, err := buildKeyStorage(secrets)
	if err != nil {
		return nil, err
	}
	keys, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &TokenManager{
		secret: []byte(secret),
		kid:    keyID(secret),
		ttl:    ttl,
		keys:   keys,
		now:    time.Now,
	}, nil
}

// TTL возвращает время жизни токена.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue подписывает токен для пользователя. Возвращает токен и время истечения.
func (m *TokenManager) Issue(id Identity) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.kid

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("подпись токена: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse проверяет токен и возвращает его claims.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// keyID — стабильный идентификатор ключа, не раскрывающий секрет.
func keyID(secret string) string {
	sum := sha256.Sum256([]byte("planner-kid:" + secret))
	return "hs-" + hex.EncodeToString(sum[:8])
}

// buildKeyStorage публикует симметричные ключи (kty=oct) в JWK Set в памяти.
// Ключ для проверки токена выбирается по kid из заголовка.
func buildKeyStorage(secrets []string) (jwkset.Storage, error) {
	storage := jwkset.NewMemoryStorage()
	for _, s := range secrets {
		jwk, err := jwkset.NewJWKFromKey([]byte(s), jwkset.JWKOptions{
			Marshal: jwkset.JWKMarshalOptions{Private: true},
			Metadata: jwkset.JWKMetadataOptions{
				ALG: jwkset.AlgHS256,
				KID: keyID(s),
				USE: jwkset.UseSig,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("создание JWK: %w", err)
		}
		if err := storage.KeyWrite(context.Background(), jwk); err != nil {
			return nil, fmt.Errorf("запись JWK: %w", err)
		}
	}
	return storage, nil
}
