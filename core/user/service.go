package user

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrForbidden            = errors.New("permission denied")
)

// Account describes one of the fixed accounts. PasswordHash wins over Password when set.
type Account struct {
	Username     string
	Role         Role
	Password     string
	PasswordHash string
}

// Service authenticates the fixed admin and faculty accounts.
type Service struct {
	users map[string]User
}

// NewService builds the "admin" and "faculty" accounts from conf.
func NewService(conf *core.Config) (*Service, error) {
	return NewServiceWithAccounts(
		Account{
			Username:     "admin",
			Role:         RoleAdmin,
			Password:     conf.Accounts.AdminPassword,
			PasswordHash: conf.Accounts.AdminPasswordHash,
		},
		Account{
			Username:     "faculty",
			Role:         RoleFaculty,
			Password:     conf.Accounts.FacultyPassword,
			PasswordHash: conf.Accounts.FacultyPasswordHash,
		},
	)
}

func NewServiceWithAccounts(accounts ...Account) (*Service, error) {
	svc := &Service{users: make(map[string]User, len(accounts))}
	for i, acc := range accounts {
		if !acc.Role.Valid() {
			return nil, pkgerrors.Errorf("account %q: invalid role %q", acc.Username, acc.Role)
		}
		usr := User{ID: i + 1, Username: core.CleanString(acc.Username), Role: acc.Role}
		if acc.PasswordHash != "" {
			usr.PasswordHash = []byte(acc.PasswordHash)
		} else if err := usr.SetPassword(acc.Password); err != nil {
			return nil, pkgerrors.Wrapf(err, "hashing password of %q", acc.Username)
		}
		svc.users[usr.Username] = usr
	}
	return svc, nil
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	if usr, ok := svc.users[core.CleanString(uname)]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

// Authenticate checks the credentials and returns the matching Principal.
func (svc *Service) Authenticate(uname, pwd string) (Principal, error) {
	usr, err := svc.GetByUsername(uname)
	if err != nil {
		return Anonymous, ErrAuthenticationFailed
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return Anonymous, ErrAuthenticationFailed
	}
	return usr.Principal(), nil
}
