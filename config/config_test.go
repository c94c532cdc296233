package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-sorts/config"
)

const iniText = `[postgresql]
host = db.internal
port = 6543
user = reader
password = s3cret
dbname = literature

[other]
host = elsewhere
`

func writeEncrypted(t *testing.T, plain string) (cfgFile, keyFile string) {
	t.Helper()
	dir := t.TempDir()

	var key fernet.Key
	require.NoError(t, key.Generate())
	token, err := fernet.EncryptAndSign([]byte(plain), &key)
	require.NoError(t, err)

	cfgFile = filepath.Join(dir, "database.crypt")
	keyFile = filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(cfgFile, token, 0o600))
	require.NoError(t, os.WriteFile(keyFile, []byte(key.Encode()), 0o600))
	return cfgFile, keyFile
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/papers.db")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "4242", cfg.HTTPPort)
	assert.Equal(t, "/tmp/papers.db?_foreign_keys=on", cfg.SQLiteDSN())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("PostgresMissingUser", func(t *testing.T) {
		cfg := &config.Config{DBDriver: "postgres", DBHost: "h", DBName: "n"}
		assert.Error(t, cfg.Validate())
	})
	t.Run("UnknownDriver", func(t *testing.T) {
		cfg := &config.Config{DBDriver: "oracle"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &config.Config{DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: 1, DBSSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable", cfg.DSN())
}

func TestReadEncryptedSection(t *testing.T) {
	cfgFile, keyFile := writeEncrypted(t, iniText)

	params, err := config.ReadEncryptedSection(cfgFile, "postgresql", keyFile)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", params["host"])
	assert.Equal(t, "literature", params["dbname"])

	_, err = config.ReadEncryptedSection(cfgFile, "missing", keyFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section missing not found")
}

func TestReadEncryptedSection_WrongKey(t *testing.T) {
	cfgFile, _ := writeEncrypted(t, iniText)
	_, otherKey := writeEncrypted(t, "[x]\n")

	_, err := config.ReadEncryptedSection(cfgFile, "postgresql", otherKey)
	assert.ErrorIs(t, err, config.ErrDecrypt)
}

func TestLoadEncrypted(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfgFile, keyFile := writeEncrypted(t, iniText)

	cfg, err := config.LoadEncrypted(cfgFile, "", keyFile)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "reader", cfg.DBUser)
	assert.Equal(t, "s3cret", cfg.DBPassword)
	assert.Equal(t, "literature", cfg.DBName)
}

func TestApplyDatabaseParams_BadPort(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.ApplyDatabaseParams(map[string]string{"port": "abc"})
	assert.Error(t, err)
}

func TestConfig_ValidateBackup(t *testing.T) {
	cfg := &config.Config{KeepBackups: 4}
	assert.Error(t, cfg.ValidateBackup())

	cfg.BackupBucket = "papers"
	cfg.BackupEndpoint = "https://s3.example.org"
	cfg.BackupAccessKey = "ak"
	cfg.BackupSecretKey = "sk"
	assert.NoError(t, cfg.ValidateBackup())

	cfg.KeepBackups = 0
	assert.Error(t, cfg.ValidateBackup())
}

func TestNewLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "papersorts.log")
	cfg := &config.Config{LogLevel: "debug", LogFile: logFile}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	_, err = (&config.Config{LogLevel: "loud"}).NewLogger()
	assert.Error(t, err)
}
