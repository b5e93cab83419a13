package identity

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mtasks/pkg/filesystem"
)

// account is one stored local account
type account struct {
	ID           string    `yaml:"id"`
	Email        string    `yaml:"email"`
	PasswordHash string    `yaml:"password_hash"`
	CreatedAt    time.Time `yaml:"created_at"`
}

type accountsFile struct {
	Accounts []account `yaml:"accounts"`
}

// accountStore reads and writes the accounts file. Callers serialise access.
type accountStore struct {
	path string
}

func (s *accountStore) load() ([]account, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	return file.Accounts, nil
}

func (s *accountStore) save(accounts []account) error {
	data, err := yaml.Marshal(accountsFile{Accounts: accounts})
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	return filesystem.SafeWrite(s.path, data, 0600)
}

func (s *accountStore) byEmail(email string) (*account, error) {
	accounts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

func (s *accountStore) byID(id string) (*account, error) {
	accounts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

func (s *accountStore) put(acc account) error {
	accounts, err := s.load()
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].ID == acc.ID {
			accounts[i] = acc
			return s.save(accounts)
		}
	}
	return s.save(append(accounts, acc))
}
