package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fintechjobs-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "fintechjobs"

	// EnvIMAPPassword is read when the keychain has no entry.
	EnvIMAPPassword = "FINTECHJOBS_IMAP_PASSWORD"
)

var ErrNoPassword = errors.New("IMAP password not found (set it in keychain or via " + EnvIMAPPassword + ")")

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := strings.TrimSpace(os.Getenv(EnvIMAPPassword)); pw != "" {
		return pw, nil
	}
	return "", ErrNoPassword
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"fintechjobs:imap:%s@%s",
		strings.TrimSpace(cfg.Email.Username),
		strings.TrimSpace(cfg.Email.IMAPHost),
	)
}
