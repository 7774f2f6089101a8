package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidClientToken is returned when a client cookie cannot be trusted.
var ErrInvalidClientToken = errors.New("auth: invalid client token")

// ClientTokens issues and validates the signed cookie that identifies a
// browser. The client id selects the storage namespace of that browser.
type ClientTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewClientTokens builds a token manager. A non-positive ttl defaults to 24h.
func NewClientTokens(secret string, ttl time.Duration) *ClientTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ClientTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// ClientClaims describes the JWT payload.
type ClientClaims struct {
	ClientID string `json:"cid"`
	jwt.RegisteredClaims
}

// TTL returns how long issued tokens stay valid.
func (ct *ClientTokens) TTL() time.Duration {
	return ct.ttl
}

// NewClientID returns a fresh random client id.
func NewClientID() string {
	return uuid.NewString()
}

// Issue signs a token for clientID.
func (ct *ClientTokens) Issue(clientID string) (string, time.Time, error) {
	if clientID == "" {
		return "", time.Time{}, errors.New("auth: empty client id")
	}
	now := ct.now()
	expiresAt := now.Add(ct.ttl)
	claims := &ClientClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ct.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates tokenStr and returns the client id it carries.
func (ct *ClientTokens) Parse(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &ClientClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return ct.secret, nil
	}, jwt.WithTimeFunc(ct.now))
	if err != nil {
		return "", errors.Join(ErrInvalidClientToken, err)
	}

	claims, ok := parsed.Claims.(*ClientClaims)
	if !ok || !parsed.Valid || claims.ClientID == "" {
		return "", ErrInvalidClientToken
	}
	return claims.ClientID, nil
}
