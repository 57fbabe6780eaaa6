package gpg

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// maxSignatureSize bounds how much of a signature file is read
const maxSignatureSize = 10 * 1024

// Verifier checks detached signatures against a public keyring
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{keyring: make(openpgp.EntityList, 0)}
}

// ImportKeyFromFile adds the keys of an armored or binary key file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	entities, err := readKeyFile(keyPath)
	if err != nil {
		return err
	}
	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportEntities adds already loaded keys
func (v *Verifier) ImportEntities(entities ...*openpgp.Entity) {
	v.keyring = append(v.keyring, entities...)
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}

// VerifyDetached checks an armored or binary detached signature of message
func (v *Verifier) VerifyDetached(message, signature io.Reader) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported")
	}

	sig := bufio.NewReader(io.LimitReader(signature, maxSignatureSize))
	armored, err := isArmored(sig)
	if err != nil {
		return err
	}

	if armored {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, message, sig, nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, message, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
