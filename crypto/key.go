package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cmtos "github.com/cometbft/cometbft/libs/os"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var ErrKeyExists = errors.New("key file already exists")

// Key is an account key: a secp256k1 private key stored hex encoded in a
// single file.
type Key struct {
	priv *ecdsa.PrivateKey
}

func GenerateKey() (*Key, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Key{priv: priv}, nil
}

func KeyFromHex(s string) (*Key, error) {
	priv, err := ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, err
	}
	return &Key{priv: priv}, nil
}

func LoadKeyFile(path string) (*Key, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	k, err := KeyFromHex(string(dat))
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}
	return k, nil
}

// Save writes the key to path and refuses to overwrite an existing file.
func (k *Key) Save(path string) error {
	if cmtos.FileExists(path) {
		return ErrKeyExists
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(ethcrypto.FromECDSA(k.priv))), 0o600)
}

func (k *Key) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.priv.PublicKey)
}

func (k *Key) PublicKey() []byte {
	return ethcrypto.FromECDSAPub(&k.priv.PublicKey)
}

func (k *Key) PrivateKey() *ecdsa.PrivateKey {
	return k.priv
}
