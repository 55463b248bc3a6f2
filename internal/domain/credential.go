package domain

import "time"

// CredentialRecord stores a salted password digest. Salt is generated
// once when the record is created and never reused.
type CredentialRecord struct {
	ID             string
	Identity       string
	PasswordDigest []byte
	Salt           []byte
	Scheme         string
	CreatedAt      time.Time
}
