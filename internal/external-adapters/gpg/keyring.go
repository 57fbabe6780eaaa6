// Package gpg signs and verifies batch manifests with OpenPGP keys.
package gpg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armorPrefix = "-----BEGIN PGP"

// readKeyFile loads every entity from an armored or binary key file
func readKeyFile(keyPath string) (openpgp.EntityList, error) {
	//nolint:gosec // G304: keyPath comes from configuration
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	entities, err := readKeyRing(f)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyPath)
	}
	return entities, nil
}

func readKeyRing(r io.Reader) (openpgp.EntityList, error) {
	br := bufio.NewReader(r)
	armored, err := isArmored(br)
	if err != nil {
		return nil, err
	}

	var entities openpgp.EntityList
	if armored {
		entities, err = openpgp.ReadArmoredKeyRing(br)
	} else {
		entities, err = openpgp.ReadKeyRing(br)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return entities, nil
}

// isArmored peeks at the first bytes without consuming them
func isArmored(br *bufio.Reader) (bool, error) {
	head, err := br.Peek(len(armorPrefix))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, fmt.Errorf("failed to read key material: %w", err)
	}
	return strings.HasPrefix(string(head), armorPrefix), nil
}
