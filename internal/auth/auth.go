package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload carried by an access token.
type Claims struct {
	UserID string `json:"sub"`
	Name   string `json:"name,omitempty"`
	Guest  bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Session is the signed-in identity. A zero Session means signed out.
type Session struct {
	User  chat.User `json:"user"`
	Guest bool      `json:"guest"`
}

func (s Session) SignedIn() bool { return s.User.ID != "" }

// Service authenticates against the users collection. It holds no session
// state of its own: the server runs many users at once, so identity always
// travels in the token and each connection's engine carries its own viewer.
type Service struct {
	store     docstore.Store
	log       *logger.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(store docstore.Store, log *logger.Logger, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL == 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		store:     store,
		log:       log,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// SignIn checks the credentials against the user's stored password hash and
// returns the session plus a signed access token.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, string, error) {
	if email == "" || password == "" {
		return Session{}, "", ripple_errors.ErrInvalidInput
	}

	docs, err := s.store.List(ctx, docstore.UsersCollection, docstore.Query{})
	if err != nil {
		return Session{}, "", err
	}

	for _, doc := range docs {
		u := chat.UserFromDoc(doc)
		if u.Email != email {
			continue
		}
		hash, _ := doc.Data["passwordHash"].(string)
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			return Session{}, "", ripple_errors.ErrUnauthorized
		}

		session := Session{User: u}
		token, err := s.issueToken(session)
		if err != nil {
			return Session{}, "", err
		}
		s.log.Infof("user %s signed in", u.ID)
		return session, token, nil
	}

	return Session{}, "", ripple_errors.ErrUnauthorized
}

// SignInGuest starts an anonymous session against the shared guest profile.
func (s *Service) SignInGuest(ctx context.Context, guestUserID string) (Session, string, error) {
	doc, err := s.store.Get(ctx, docstore.UserPath(guestUserID))
	if err != nil {
		return Session{}, "", err
	}

	session := Session{User: chat.UserFromDoc(doc), Guest: true}
	token, err := s.issueToken(session)
	if err != nil {
		return Session{}, "", err
	}
	return session, token, nil
}

// Verify parses and validates an access token.
func (s *Service) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ripple_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ripple_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Claims{}, ripple_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ripple_errors.ErrUnauthorized
	}
	return *claims, nil
}

// Register creates a user document with a bcrypt password hash. The email
// must not already be taken.
func (s *Service) Register(ctx context.Context, name, email, password, avatarURL string) (string, error) {
	if name == "" || email == "" || len(password) < 8 {
		return "", ripple_errors.ErrInvalidInput
	}

	docs, err := s.store.List(ctx, docstore.UsersCollection, docstore.Query{})
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if chat.UserFromDoc(doc).Email == email {
			return "", ripple_errors.ErrAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return s.store.Add(ctx, docstore.UsersCollection, map[string]any{
		"name":         name,
		"email":        email,
		"passwordHash": string(hash),
		"imgUrl":       avatarURL,
		"isOnline":     false,
	})
}

func (s *Service) issueToken(session Session) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: session.User.ID,
		Name:   session.User.Name,
		Guest:  session.Guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// HTTPStatus maps service errors to response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ripple_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ripple_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ripple_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ripple_errors.ErrNotFound), errors.Is(err, ripple_errors.ErrScopeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ripple_errors.ErrAlreadyExists), errors.Is(err, ripple_errors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
