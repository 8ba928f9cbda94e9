// Package auth is the authentication collaborator: account creation, email +
// password sign-in, and the bearer-token middleware that stands in for a
// session subscription. Failures are classified into the collaborator's own
// codes (invalid-credential, email-already-in-use, weak-password, other).
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/Arman-Bisht/med-connect/internal/apperr"
	"github.com/Arman-Bisht/med-connect/internal/models"
	"github.com/Arman-Bisht/med-connect/internal/snapshot"
	"github.com/Arman-Bisht/med-connect/internal/store"
)

// Passwords need at least 8 characters with a letter, a digit, and one of
// the listed specials.
var (
	passwordAlphabet = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,}$`)
	hasLetter        = regexp.MustCompile(`[A-Za-z]`)
	hasDigit         = regexp.MustCompile(`\d`)
	hasSpecial       = regexp.MustCompile(`[@$!%*#?&]`)
)

// Service owns the users collection and the token signer.
type Service struct {
	st  store.Store
	jwt *JWT
}

func NewService(st store.Store, jwt *JWT) *Service {
	return &Service{st: st, jwt: jwt}
}

// SignUpRequest is the registration form.
type SignUpRequest struct {
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Password        string           `json:"password"`
	ConfirmPassword string           `json:"confirmPassword"`
	Country         string           `json:"country"`
	Specialty       models.Specialty `json:"specialty"`
	Experience      int              `json:"experience"`
	Bio             string           `json:"bio"`
}

// Session is what sign-in and sign-up hand back: the profile plus a token.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignUp validates the form, creates the account, and opens a session.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperr.Validation("passwords do not match")
	}
	if req.Country != models.CountryUSA && req.Country != models.CountryIndia {
		return nil, apperr.Validation("country must be %s or %s", models.CountryUSA, models.CountryIndia)
	}
	if !validPassword(req.Password) {
		return nil, apperr.Auth(apperr.AuthWeakPassword,
			"password must be at least 8 characters and contain one letter, one number, and one special character")
	}

	if _, err := s.st.FindOneBy(ctx, store.Users, "email", req.Email); err == nil {
		return nil, apperr.Auth(apperr.AuthEmailInUse, "this email address is already in use")
	} else if !isNotFound(err) {
		return nil, apperr.Remote("user lookup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Auth(apperr.AuthOther, "could not hash password")
	}

	experience := req.Experience
	if experience <= 0 {
		experience = 5
	}
	user := &models.User{
		ID:              uuid.NewString(),
		Name:            "Dr. " + req.Name,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Specialty:       req.Specialty,
		Country:         req.Country,
		Experience:      experience,
		Availability:    models.AvailabilityAvailable,
		Bio:             req.Bio,
		ProfileImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", uuid.NewString()),
	}

	if _, err := s.st.Create(ctx, store.Users, userDoc(user)); err != nil {
		return nil, apperr.Remote("create user failed", err)
	}

	return s.session(user)
}

// SignIn checks the credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("please enter both email and password")
	}
	doc, err := s.st.FindOneBy(ctx, store.Users, "email", email)
	if isNotFound(err) {
		return nil, apperr.Auth(apperr.AuthInvalidCredential, "invalid credentials")
	}
	if err != nil {
		return nil, apperr.Remote("user lookup failed", err)
	}
	user, err := snapshot.DecodeUser(doc)
	if err != nil {
		return nil, apperr.Auth(apperr.AuthOther, "corrupt user record")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Auth(apperr.AuthInvalidCredential, "invalid credentials")
	}
	return s.session(user)
}

// CurrentUser resolves the profile behind a set of token claims.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	doc, err := s.st.GetOne(ctx, store.Users, claims.UserID)
	if err != nil {
		return nil, apperr.Auth(apperr.AuthOther, "account no longer exists")
	}
	return snapshot.DecodeUser(doc)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.jwt.Issue(user.ID, user.Country, time.Now())
	if err != nil {
		return nil, apperr.Auth(apperr.AuthOther, "could not issue token")
	}
	user.PasswordHash = ""
	return &Session{Token: token, User: user}, nil
}

func validPassword(pw string) bool {
	return passwordAlphabet.MatchString(pw) &&
		hasLetter.MatchString(pw) &&
		hasDigit.MatchString(pw) &&
		hasSpecial.MatchString(pw)
}

func userDoc(u *models.User) bson.M {
	// Stored with the auth uid as the document id, like the original
	// users collection.
	return bson.M{
		"_id":             u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"password_hash":   u.PasswordHash,
		"specialty":       string(u.Specialty),
		"country":         u.Country,
		"profileImageUrl": u.ProfileImageURL,
		"experience":      u.Experience,
		"availability":    u.Availability,
		"bio":             u.Bio,
	}
}

func isNotFound(err error) bool {
	var nf store.ErrNotFound
	return errors.As(err, &nf)
}
