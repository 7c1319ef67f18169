package state

import (
	"crypto/rand"

	"go.step.sm/crypto/x25519"
)

type WfPrivateKey [x25519.PrivateKeySize]byte
type WfPublicKey [x25519.PublicKeySize]byte

func GenerateKey() WfPrivateKey {
	_, key, err := x25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return WfPrivateKey(key)
}

func (k WfPrivateKey) Pubkey() WfPublicKey {
	val, err := x25519.PrivateKey(k[:]).PublicKey()
	if err != nil {
		panic(err)
	}
	return WfPublicKey(val)
}
