package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"fintechjobs-engine/internal/config"
)

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvIMAPPassword, "")

	acct := "fintechjobs:imap:me@imap.test"
	_, err := GetIMAPPassword(acct)
	require.ErrorIs(t, err, ErrNoPassword)

	require.NoError(t, SetIMAPPassword(acct, "s3cret"))
	pw, err := GetIMAPPassword(acct)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	require.NoError(t, DeleteIMAPPassword(acct))
	require.NoError(t, DeleteIMAPPassword(acct), "deleting a missing entry is fine")
	_, err = GetIMAPPassword(acct)
	require.Error(t, err)
}

func TestEnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvIMAPPassword, "from-env")

	pw, err := GetIMAPPassword("fintechjobs:imap:nobody@imap.test")
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)
}

func TestSetValidation(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetIMAPPassword("", "x"))
	assert.Error(t, SetIMAPPassword("acct", " "))
	assert.Error(t, DeleteIMAPPassword(""))
}

func TestIMAPKeyringAccount(t *testing.T) {
	var cfg config.Config
	cfg.Email.Username = " me@gmail.com "
	cfg.Email.IMAPHost = "imap.gmail.com"
	assert.Equal(t, "fintechjobs:imap:me@gmail.com@imap.gmail.com", IMAPKeyringAccount(cfg))
}
