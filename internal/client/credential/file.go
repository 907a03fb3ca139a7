package credential

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sealedFile is the on-disk shape of a FileBackend.
type sealedFile struct {
	Salt    string `json:"salt"`
	Token   string `json:"token"`
	Version int64  `json:"version"`
}

// FileBackend seals the token with AES-GCM in a 0600 JSON file. The key is
// derived from a passphrase, so the file is useless without it.
type FileBackend struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path, passphrase string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("credential file path is empty")
	}
	if passphrase == "" {
		return nil, errors.New("credential passphrase is empty")
	}
	return &FileBackend{path: path, passphrase: []byte(passphrase)}, nil
}

// Path returns the file the backend writes to.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Load(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}

	var sf sealedFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return "", fmt.Errorf("decode credential file: %w", err)
	}
	if sf.Token == "" {
		return "", ErrNotFound
	}

	salt, err := base64.StdEncoding.DecodeString(sf.Salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	cipherData, err := base64.StdEncoding.DecodeString(sf.Token)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}

	aead, err := newAEAD(f.passphrase, salt)
	if err != nil {
		return "", err
	}
	if len(cipherData) < aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce := cipherData[:aead.NonceSize()]
	plain, err := aead.Open(nil, nonce, cipherData[aead.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed token: %w", err)
	}
	return string(plain), nil
}

func (f *FileBackend) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	aead, err := newAEAD(f.passphrase, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	ct := aead.Seal(nonce, nonce, []byte(token), nil)

	data, err := json.Marshal(sealedFile{
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Token:   base64.StdEncoding.EncodeToString(ct),
		Version: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
