package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fernet/fernet-go"
	"gopkg.in/ini.v1"
)

// DefaultSection ist der INI-Abschnitt mit den Datenbankparametern.
const DefaultSection = "postgresql"

// ErrDecrypt wird zurückgegeben, wenn die Konfigurationsdatei nicht entschlüsselt werden kann.
var ErrDecrypt = errors.New("config: cannot decrypt configuration")

// ReadEncryptedSection entschlüsselt filename mit dem Fernet-Schlüssel aus keyFile
// und liefert die Schlüssel/Wert-Paare des Abschnitts section.
func ReadEncryptedSection(filename, section, keyFile string) (map[string]string, error) {
	token, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}
	rawKey, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", keyFile, err)
	}
	key, err := fernet.DecodeKey(strings.TrimSpace(string(rawKey)))
	if err != nil {
		return nil, fmt.Errorf("decode key %s: %w", keyFile, err)
	}
	// Negative TTL: das Alter des Tokens wird nicht geprüft.
	plain := fernet.VerifyAndDecrypt([]byte(strings.TrimSpace(string(token))), -1, []*fernet.Key{key})
	if plain == nil {
		return nil, fmt.Errorf("%w: %s", ErrDecrypt, filename)
	}
	return parseSection(plain, section, filename)
}

func parseSection(data []byte, section, filename string) (map[string]string, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}
	if !file.HasSection(section) {
		return nil, fmt.Errorf("section %s not found in %s file", section, filename)
	}
	return file.Section(section).KeysHash(), nil
}

// ApplyDatabaseParams überschreibt die DB-Felder mit den Werten aus einem INI-Abschnitt.
// Die Schlüssel folgen den libpq-Namen (host, port, user, password, dbname bzw. database).
func (c *Config) ApplyDatabaseParams(params map[string]string) error {
	for key, value := range params {
		switch strings.ToLower(key) {
		case "host":
			c.DBHost = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", value, err)
			}
			c.DBPort = port
		case "user":
			c.DBUser = value
		case "password":
			c.DBPassword = value
		case "dbname", "database":
			c.DBName = value
		case "sslmode":
			c.DBSSLMode = value
		}
	}
	return nil
}

// LoadEncrypted lädt zuerst die Umgebungsvariablen und überschreibt anschließend
// die Datenbankparameter aus der verschlüsselten Konfigurationsdatei.
func LoadEncrypted(filename, section, keyFile string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if section == "" {
		section = DefaultSection
	}
	params, err := ReadEncryptedSection(filename, section, keyFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyDatabaseParams(params); err != nil {
		return nil, err
	}
	cfg.DBDriver = "postgres"
	return cfg, nil
}
