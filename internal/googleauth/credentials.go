package googleauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	// ScopeFirebaseMessaging is the only scope the relay ever asks for.
	ScopeFirebaseMessaging = "https://www.googleapis.com/auth/firebase.messaging"

	DefaultTokenURI = "https://oauth2.googleapis.com/token"
)

// Credentials is the subset of a Google service account key file the relay needs.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentialsFile reads and validates a service account key file.
func LoadCredentialsFile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file '%s': %w", path, err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes a service account key and fills in the default token URI.
func ParseCredentials(data []byte) (*Credentials, error) {
	var cred Credentials
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode service account: %w", err)
	}
	if cred.Type != "" && cred.Type != "service_account" {
		return nil, fmt.Errorf("unexpected credential type %q", cred.Type)
	}

	var missing []error
	if cred.ClientEmail == "" {
		missing = append(missing, errors.New("client_email is empty"))
	}
	if cred.PrivateKey == "" {
		missing = append(missing, errors.New("private_key is empty"))
	}
	if cred.ProjectID == "" {
		missing = append(missing, errors.New("project_id is empty"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("invalid service account: %w", errors.Join(missing...))
	}

	if cred.TokenURI == "" {
		cred.TokenURI = DefaultTokenURI
	}
	return &cred, nil
}
