// Package userdir implements the user directory: registration and
// credential verification over the user side of the storage.
package userdir

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

// Directory registers users and verifies their credentials. Passwords are
// stored only as bcrypt hashes.
type Directory struct {
	db         userKeeper
	bcryptCost int
}

type Option func(*Directory)

// WithBcryptCost overrides the bcrypt cost. Tests lower it to bcrypt.MinCost
// to keep hashing cheap.
func WithBcryptCost(cost int) Option {
	return func(d *Directory) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			d.bcryptCost = cost
		}
	}
}

func New(db userKeeper, options ...Option) *Directory {
	directory := &Directory{
		db:         db,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, option := range options {
		option(directory)
	}

	return directory
}

// Register stores a new user under a freshly assigned ID and returns it.
// An empty email or password fails with models.ErrInvalidInput; a taken
// email fails with models.ErrDuplicateEmail.
func (d *Directory) Register(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password must not be empty", models.ErrInvalidInput)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), d.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing the password: %w", err)
	}

	usr := &user.User{
		Email:        email,
		PasswordHash: string(passwordHash),
	}
	if _, err := d.db.CreateUser(ctx, usr); err != nil {
		return nil, err
	}

	return usr, nil
}

// FindByEmail looks a user up by exact, case-sensitive email match.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return d.db.FindUserByEmail(ctx, email)
}

// VerifyCredentials returns the user matching the email and password pair.
// An unknown email and a wrong password are deliberately indistinguishable:
// both return found == false so this interface alone cannot be used to
// enumerate registered emails.
func (d *Directory) VerifyCredentials(ctx context.Context, email, password string) (*user.User, bool, error) {
	usr, found, err := d.db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, false, nil
	}

	return usr, true, nil
}
