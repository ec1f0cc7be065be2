package tx

import (
	"crypto/ecdsa"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
)

// SigData is the payload covered by the signature: the envelope with the
// chain id in place of the signature.
func (btx *AssemblyTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *btx
	ntx.Sig = ext
	dat, err = json.Marshal(ntx)
	return
}

func (btx *AssemblyTx) SigHash(chainId string) ([]byte, error) {
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(dat), nil
}

// Sign fills in Sender and Sig for the given key.
func (btx *AssemblyTx) Sign(chainId string, key *ecdsa.PrivateKey) error {
	btx.Sender = crypto.PubkeyToAddress(key.PublicKey)
	hash, err := btx.SigHash(chainId)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return err
	}
	btx.Sig = sig
	return nil
}

// VerifySender checks that the signature recovers to Sender.
func (btx *AssemblyTx) VerifySender(chainId string) error {
	if len(btx.Sig) != crypto.SignatureLength {
		return ErrTxSigInvalid
	}
	hash, err := btx.SigHash(chainId)
	if err != nil {
		return err
	}
	pub, err := crypto.SigToPub(hash, btx.Sig)
	if err != nil {
		return ErrTxSigInvalid
	}
	if crypto.PubkeyToAddress(*pub) != btx.Sender {
		return ErrTxSenderMismatch
	}
	return nil
}
