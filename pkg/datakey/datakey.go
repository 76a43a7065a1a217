// Package datakey encrypts small secrets at rest with the server data key.
//
// Store principal passwords in the accounts file may be kept encrypted with
// AES-256-GCM. The packed format is a version byte, the GCM tag, the nonce and
// the ciphertext, base64 encoded when written to files.
package datakey

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	KeySize      = 32
	nonceSize    = 12
	tagSize      = aes.BlockSize
	versionMagic = byte('G')
)

// Cipher seals and opens values bound to additional authenticated data.
type Cipher interface {
	Encrypt(aad, plainText []byte) ([]byte, error)
	Decrypt(aad, packedText []byte) ([]byte, error)
}

type gcm struct {
	aead cipher.AEAD
}

// New returns a Cipher for a 256 bit key.
func New(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &gcm{aead: aead}, nil
}

// FromBase64 decodes a base64 key and returns its Cipher.
func FromBase64(encoded string) (Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("bad data key: %w", err)
	}
	return New(key)
}

// Generate returns a new random key, base64 encoded.
func Generate() (string, error) {
	key, err := randomBytes(KeySize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.Strict().EncodeToString(key), nil
}

func (g *gcm) Encrypt(aad, plainText []byte) ([]byte, error) {
	nonce, err := randomBytes(nonceSize)
	if err != nil {
		return nil, err
	}
	sealed := g.aead.Seal(nil, nonce, plainText, aad)
	return pack(sealed, nonce), nil
}

func (g *gcm) Decrypt(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < 1+tagSize+nonceSize {
		return nil, errors.New("ciphertext is too short")
	}
	if packedText[0] != versionMagic {
		return nil, fmt.Errorf("unknown ciphertext version %q", packedText[0])
	}
	sealed, nonce := unpack(packedText)
	return g.aead.Open(nil, nonce, sealed, aad)
}

// EncryptString encrypts value and returns it base64 encoded.
func EncryptString(c Cipher, aad, value string) (string, error) {
	packed, err := c.Encrypt([]byte(aad), []byte(value))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(packed), nil
}

// DecryptString reverses EncryptString.
func DecryptString(c Cipher, aad, encoded string) (string, error) {
	packed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("bad ciphertext encoding: %w", err)
	}
	plain, err := c.Decrypt([]byte(aad), packed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// pack lays out "#{magic}#{tag}#{nonce}#{ciphertext}".
func pack(sealed, nonce []byte) []byte {
	tagStart := len(sealed) - tagSize
	tag := sealed[tagStart:]
	cipherText := sealed[:tagStart]

	data := make([]byte, 0, 1+tagSize+nonceSize+len(cipherText))
	data = append(data, versionMagic)
	data = append(data, tag...)
	data = append(data, nonce[:nonceSize]...)
	data = append(data, cipherText...)
	return data
}

func unpack(packed []byte) (sealed, nonce []byte) {
	index := 1
	tag := packed[index : index+tagSize]
	index += tagSize
	nonce = packed[index : index+nonceSize]
	index += nonceSize

	sealed = make([]byte, 0, len(packed)-index+tagSize)
	sealed = append(sealed, packed[index:]...)
	sealed = append(sealed, tag...)
	return sealed, nonce
}

func randomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}
