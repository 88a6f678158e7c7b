package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/copernet/copernicus/util"
	"github.com/pkg/errors"
)

type PrivateKey struct {
	version    byte
	compressed bool
	bytes      []byte
}

const (
	PrivateKeyBytesLen      = 32
	DumpedPrivateKeyVersion = 128
)

var privateKeyVersion byte = DumpedPrivateKeyVersion

// InitPrivateKeyVersion sets the base58check version byte used when encoding
// and decoding dumped private keys, so callers can target a different network.
func InitPrivateKeyVersion(version byte) {
	privateKeyVersion = version
}

func PrivateKeyFromBytes(privateKeyBytes []byte) *PrivateKey {

	privateKey := PrivateKey{
		bytes:   privateKeyBytes,
		version: privateKeyVersion,
	}
	return &privateKey
}

func (privateKey *PrivateKey) PubKey() *PublicKey {
	_, pubKey := btcec.PrivKeyFromBytes(privateKey.bytes)
	return &PublicKey{SecpPubKey: pubKey, Compressed: privateKey.compressed}
}

func (privateKey *PrivateKey) Sign(hash []byte) (*Signature, error) {
	priv, _ := btcec.PrivKeyFromBytes(privateKey.bytes)
	sig := ecdsa.Sign(priv, hash)
	return &Signature{sig: sig}, nil
}

func (privateKey *PrivateKey) Encode() []byte {

	if !privateKey.compressed {
		return privateKey.bytes
	}
	bytes := make([]byte, 0)
	bytes = append(bytes, privateKey.bytes...)
	bytes = append(bytes, 1)
	return bytes

}

func (privateKey *PrivateKey) ToString() string {

	privateKeyBytes := privateKey.Encode()

	privateKeyString := util.Base58EncodeCheck(privateKeyBytes, privateKey.version)
	return privateKeyString

}

func DecodePrivateKey(encoded string) (*PrivateKey, error) {
	bytes, version, err := util.Base58DecodeCheck(encoded)
	if err != nil {
		return nil, err
	}
	if version != privateKeyVersion {
		return nil, errors.Errorf("Mismatched version number ,trying to cross network , got version is %d", version)
	}
	var compressed bool
	if len(bytes) == PrivateKeyBytesLen+1 && bytes[PrivateKeyBytesLen] == 1 {
		compressed = true
		bytes = bytes[:PrivateKeyBytesLen]
	} else if len(bytes) == PrivateKeyBytesLen {
		compressed = false

	} else {
		return nil, errors.New("Wrong number of bytes a private key , not 32 or 33")
	}
	privateKey := PrivateKey{version: version, bytes: bytes, compressed: compressed}
	return &privateKey, nil

}
