// Package keygen generates the RSA key pair used for administrative SSH
// access to the gateway instance.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA key size used when the caller does not choose one.
const DefaultBits = 4096

// KeyPair holds a generated key in the two encodings the provisioner
// needs: PEM for the local key file, authorized_keys format for import
// into the cloud provider.
type KeyPair struct {
	PrivatePEM []byte
	PublicKey  []byte
}

// New generates a new RSA key pair.
func New(bits int) (*KeyPair, error) {
	if bits == 0 {
		bits = DefaultBits
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("validating RSA key: %w", err)
	}

	privBlock := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("deriving public key: %w", err)
	}

	return &KeyPair{
		PrivatePEM: pem.EncodeToMemory(&privBlock),
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// WritePrivateKey persists the PEM-encoded private key with owner-only
// permissions. An existing file at path is an error; a stale key from an
// earlier session must be removed by delete first.
func (k *KeyPair) WritePrivateKey(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o400)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}
	if _, err := f.Write(k.PrivatePEM); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing key file: %w", err)
	}
	return nil
}

// Signer parses the private key for use with the SSH client.
func (k *KeyPair) Signer() (ssh.Signer, error) {
	return ssh.ParsePrivateKey(k.PrivatePEM)
}
