// Package user provides lookups of local users and the user directory used by the login flow.
package user

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/markstash/markstash/internal/auth"
	"github.com/markstash/markstash/internal/db/models"
)

const (
	externalIDQueryPattern = "external_id = ?"
	usernameQueryPattern   = "username = ?"

	maxProvisionAttempts = 5
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrSubjectEmpty is returned when a lookup is made with an empty subject.
	ErrSubjectEmpty = errors.New("subject cannot be empty")
	// ErrUnknownSubject is returned by Resolve when the subject has no local user and provisioning is off.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrUserDisabled is returned by Resolve for inactive users.
	ErrUserDisabled = errors.New("user is disabled")
	// ErrSubjectTaken is returned by Provision when the subject already has a user.
	ErrSubjectTaken = errors.New("subject already provisioned")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a user by its ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetBySubject retrieves a user by the provider subject identifier.
func GetBySubject(db *gorm.DB, subject string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	var user models.User
	result := db.Where(externalIDQueryPattern, subject).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// Provision creates an active user for subject. The username is the first of
// username, email and subject that is still free; if all are taken the first
// non-empty one gets a numeric suffix.
func Provision(db *gorm.DB, subject, username, email, firstName, lastName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	var err error
	for range maxProvisionAttempts {
		var name string
		name, err = freeUsername(db, username, email, subject)
		if err != nil {
			return nil, err
		}

		user := &models.User{
			Active:     true,
			Username:   name,
			Email:      email,
			FirstName:  firstName,
			LastName:   lastName,
			ExternalID: subject,
		}

		if err = db.Create(user).Error; err == nil {
			return user, nil
		}

		// either the subject was provisioned meanwhile or the name got taken
		if _, getErr := GetBySubject(db, subject); getErr == nil {
			return nil, ErrSubjectTaken
		}
	}

	return nil, err
}

func freeUsername(db *gorm.DB, candidates ...string) (string, error) {
	base := ""
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if base == "" {
			base = name
		}

		taken, err := usernameTaken(db, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}

	for i := 2; ; i++ {
		name := base + "-" + strconv.Itoa(i)

		taken, err := usernameTaken(db, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
}

func usernameTaken(db *gorm.DB, name string) (bool, error) {
	var n int64
	if err := db.Model(&models.User{}).Where(usernameQueryPattern, name).Count(&n).Error; err != nil {
		return false, err
	}

	return n > 0, nil
}

// Directory resolves provider subjects to local user ids.
type Directory struct {
	db            *gorm.DB
	autoProvision bool
}

var _ auth.ProfileDirectory = (*Directory)(nil)

// NewDirectory returns a Directory. With autoProvision, unknown subjects get a new local user.
func NewDirectory(db *gorm.DB, autoProvision bool) *Directory {
	return &Directory{db: db, autoProvision: autoProvision}
}

// Resolve maps subject to a local user id.
func (d *Directory) Resolve(ctx context.Context, subject string) (uint64, error) {
	user, _, err := d.resolve(ctx, subject, func(db *gorm.DB) (*models.User, error) {
		return Provision(db, subject, "", "", "", "")
	})
	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// ResolveProfile is Resolve with the ID token claims at hand; new users are
// provisioned from them and existing users get their names refreshed.
func (d *Directory) ResolveProfile(ctx context.Context, profile *auth.Profile) (uint64, error) {
	user, created, err := d.resolve(ctx, profile.Subject, func(db *gorm.DB) (*models.User, error) {
		return Provision(db, profile.Subject, profile.Email, profile.Email, profile.GivenName, profile.FamilyName)
	})
	if err != nil {
		return 0, err
	}

	if created || (profile.Email == "" && profile.GivenName == "" && profile.FamilyName == "") {
		return user.ID, nil
	}

	// Updates skips zero values, claims the provider left out are kept.
	result := d.db.WithContext(ctx).Model(user).Updates(models.User{
		Email:     profile.Email,
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
	})
	if result.Error != nil {
		return 0, result.Error
	}

	return user.ID, nil
}

func (d *Directory) resolve(
	ctx context.Context, subject string, provision func(db *gorm.DB) (*models.User, error),
) (*models.User, bool, error) {
	if d.db == nil {
		return nil, false, ErrDBNil
	}

	db := d.db.WithContext(ctx)
	user, err := GetBySubject(db, subject)

	switch {
	case errors.Is(err, ErrUserNotFound):
		if !d.autoProvision {
			return nil, false, ErrUnknownSubject
		}

		user, err = provision(db)
		if errors.Is(err, ErrSubjectTaken) {
			// a concurrent login provisioned the subject first
			return existingUser(db, subject)
		}
		if err != nil {
			return nil, false, err
		}

		log.Info().Uint64("user_id", user.ID).Str("subject", subject).Msg("provisioned user")

		return user, true, nil
	case err != nil:
		return nil, false, err
	case !user.Active:
		return nil, false, ErrUserDisabled
	}

	return user, false, nil
}

func existingUser(db *gorm.DB, subject string) (*models.User, bool, error) {
	user, err := GetBySubject(db, subject)
	if err != nil {
		return nil, false, err
	}
	if !user.Active {
		return nil, false, ErrUserDisabled
	}

	return user, false, nil
}
