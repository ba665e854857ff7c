package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	usermodel "VConnct/module/user/model"
	"VConnct/service/gateway"
	"VConnct/service/media"
	"VConnct/service/storage"
	errs "VConnct/tools/errs"
	"VConnct/tools/ids"
	"VConnct/tools/security"
)

var (
	ErrEmailInUse         = errs.NewCodeError(40901, "Email already in use")
	ErrInvalidCredentials = errs.NewCodeError(40110, "Invalid credentials")
	ErrWrongPassword      = errs.NewCodeError(40111, "Current password is incorrect")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const bcryptCost = 10

// Service owns the user collection: account lifecycle, credential checks,
// profile updates. It also implements gateway.IdentityStore for the socket
// handshake.
type Service struct {
	col      *mongo.Collection
	opts     security.Options
	revoked  *storage.RevocationList
	uploader media.Uploader
}

func New(db *mongo.Database, opts security.Options, revoked *storage.RevocationList, uploader media.Uploader) *Service {
	return &Service{
		col:      db.Collection(usermodel.Collection),
		opts:     opts,
		revoked:  revoked,
		uploader: uploader,
	}
}

// ValidateSignup mirrors the client-side rules; messages are client-safe.
func ValidateSignup(fullName, email, password string) error {
	if len(strings.TrimSpace(fullName)) < 3 {
		return errs.NewCodeError(40001, "Full name must be at least 3 characters long")
	}
	if !emailRe.MatchString(email) {
		return errs.NewCodeError(40002, "Invalid email address")
	}
	if len(password) < 6 {
		return errs.NewCodeError(40003, "Password must be at least 6 characters long")
	}
	return nil
}

// Signup creates the account and issues a session token.
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*usermodel.User, string, time.Time, error) {
	if err := ValidateSignup(fullName, email, password); err != nil {
		return nil, "", time.Time{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	n, err := s.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, "", time.Time{}, errors.Wrap(err, "check existing email")
	}
	if n > 0 {
		return nil, "", time.Time{}, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, errors.Wrap(err, "hash password")
	}

	now := time.Now().UTC()
	user := &usermodel.User{
		ID:        ids.GenerateString(),
		FullName:  strings.TrimSpace(fullName),
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", time.Time{}, ErrEmailInUse
		}
		return nil, "", time.Time{}, errors.Wrap(err, "insert user")
	}

	token, exp, err := security.Generate(s.opts, user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*usermodel.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user := &usermodel.User{}
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, errors.Wrap(err, "find user by email")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := security.Generate(s.opts, user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout revokes the presented token for its remaining lifetime. A missing
// or unparsable token is not an error; the cookie gets cleared regardless.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := security.Verify(s.opts.Secret, token)
	if err != nil {
		return nil // already invalid, nothing to revoke
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.revoked.Revoke(ctx, security.HashToken(token), ttl)
}

// FindByID returns (nil, nil) when no such user exists.
func (s *Service) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	user := &usermodel.User{}
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user by id")
	}
	return user, nil
}

// FindIdentityByID implements gateway.IdentityStore.
func (s *Service) FindIdentityByID(ctx context.Context, id string) (*gateway.Identity, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &gateway.Identity{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}, nil
}

// ListContacts returns every other user, for the contact picker.
func (s *Service) ListContacts(ctx context.Context, selfID string) ([]usermodel.Contact, error) {
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$ne": selfID}},
		options.Find().SetProjection(bson.M{"_id": 1, "full_name": 1, "profile_pic": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	defer cur.Close(ctx)

	contacts := make([]usermodel.Contact, 0)
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, errors.Wrap(err, "decode contacts")
	}
	return contacts, nil
}

// ContactsByID loads the contact projection for a set of user ids.
func (s *Service) ContactsByID(ctx context.Context, userIDs []string) (map[string]usermodel.Contact, error) {
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}},
		options.Find().SetProjection(bson.M{"_id": 1, "full_name": 1, "profile_pic": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "load contacts by id")
	}
	defer cur.Close(ctx)

	out := make(map[string]usermodel.Contact, len(userIDs))
	for cur.Next(ctx) {
		var ct usermodel.Contact
		if err := cur.Decode(&ct); err != nil {
			return nil, errors.Wrap(err, "decode contact")
		}
		out[ct.ID] = ct
	}
	return out, cur.Err()
}

// UpdateProfile uploads a new avatar and stores its URL.
func (s *Service) UpdateProfile(ctx context.Context, userID string, pic []byte, contentType string) (*usermodel.User, error) {
	url, err := s.uploader.Upload(ctx, pic, contentType)
	if err != nil {
		return nil, err
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"profile_pic": url, "updated_at": time.Now().UTC()}})
	if err != nil {
		return nil, errors.Wrap(err, "update profile pic")
	}
	return s.FindByID(ctx, userID)
}

// UpdatePassword verifies the current password before storing a new hash.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 6 {
		return errs.NewCodeError(40003, "Password must be at least 6 characters long")
	}
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": string(hash), "updated_at": time.Now().UTC()}})
	return errors.Wrap(err, "update password")
}
