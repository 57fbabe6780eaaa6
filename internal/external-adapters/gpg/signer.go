package gpg

import (
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer produces armored detached signatures with a private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner loads the first private key of keyPath, decrypting it with
// passphrase when the key is protected
func NewSigner(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyFile(keyPath)
	if err != nil {
		return nil, err
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			if len(passphrase) == 0 {
				return nil, fmt.Errorf("signing key is encrypted and no passphrase was given")
			}
			if err := entity.DecryptPrivateKeys(passphrase); err != nil {
				return nil, fmt.Errorf("failed to decrypt signing key: %w", err)
			}
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

// NewSignerFromEntity wraps an already loaded entity
func NewSignerFromEntity(entity *openpgp.Entity) *Signer {
	return &Signer{entity: entity}
}

// SignDetached writes an armored signature of message to signature
func (s *Signer) SignDetached(message io.Reader, signature io.Writer) error {
	if err := openpgp.ArmoredDetachSign(signature, s.entity, message, nil); err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	return nil
}
