package widgettoken

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is the default lifetime for widget session tokens.
	DefaultTokenTTL = 24 * time.Hour
	// DefaultLeeway is clock skew tolerance for token validation.
	DefaultLeeway = 15 * time.Second

	issuer = "smartbots-chat"
)

// Claims binds a widget session to one bot and its conversation thread, so a
// visitor cannot replay a session token against another bot or thread.
type Claims struct {
	BotID    string `json:"bot"`
	ThreadID string `json:"thr"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 widget session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewManager creates a manager from the shared signing secret.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("widget token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		leeway: DefaultLeeway,
	}, nil
}

// Issue signs a session token for the bot/thread pair.
func (m *Manager) Issue(botID, threadID string) (string, error) {
	botID = strings.TrimSpace(botID)
	threadID = strings.TrimSpace(threadID)
	if botID == "" || threadID == "" {
		return "", errors.New("bot id and thread id required")
	}
	now := time.Now().UTC()
	claims := Claims{
		BotID:    botID,
		ThreadID: threadID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   botID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates the token and returns its claims.
func (m *Manager) Verify(token string) (Claims, error) {
	claims := Claims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, errors.New("token required")
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unsupported signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return claims, err
	}
	if claims.BotID == "" || claims.ThreadID == "" {
		return claims, errors.New("bot and thread claims required")
	}
	return claims, nil
}
