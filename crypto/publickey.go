package crypto

import (
	"encoding/hex"
	"reflect"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/copernet/copernicus/util"
)

// PublicKey wraps a secp256k1 public key, remembering whether it should be
// serialized in compressed or uncompressed form.
type PublicKey struct {
	SecpPubKey *btcec.PublicKey
	Compressed bool
}

// ParsePubKey parses a SEC 1 encoded public key (compressed or uncompressed).
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	pubKey, err := btcec.ParsePubKey(pubKeyStr)
	if err != nil {
		return nil, err
	}
	return &PublicKey{SecpPubKey: pubKey, Compressed: IsCompressedPubKey(pubKeyStr)}, nil
}

func (publicKey *PublicKey) ToSecp256k() *btcec.PublicKey {
	return publicKey.SecpPubKey
}

func (publicKey *PublicKey) ToHexString() string {
	bytes := publicKey.ToBytes()
	return hex.EncodeToString(bytes)

}
func (publicKey *PublicKey) ToBytes() []byte {
	if publicKey.Compressed {
		return publicKey.SerializeCompressed()
	}
	return publicKey.SerializeUncompressed()

}

// ToHash160 returns RIPEMD160(SHA256(pubkey)), the key's P2PKH identifier.
func (publicKey *PublicKey) ToHash160() []byte {
	return util.Hash160(publicKey.ToBytes())
}

func (publicKey *PublicKey) SerializeUncompressed() []byte {
	return publicKey.SecpPubKey.SerializeUncompressed()
}

func (publicKey *PublicKey) SerializeCompressed() []byte {
	return publicKey.SecpPubKey.SerializeCompressed()
}

func (publicKey *PublicKey) IsEqual(otherPublicKey *PublicKey) bool {
	publicKeyBytes := publicKey.SerializeUncompressed()
	otherBytes := otherPublicKey.SerializeUncompressed()
	return reflect.DeepEqual(publicKeyBytes, otherBytes)
}

func IsCompressedOrUncompressedPubKey(bytes []byte) bool {
	if len(bytes) < 33 {
		return false
	}
	if bytes[0] == 0x04 {
		if len(bytes) != 65 {
			return false
		}
	} else if bytes[0] == 0x02 || bytes[0] == 0x03 {
		if len(bytes) != 33 {
			return false
		}
	} else {
		return false
	}
	return true
}

func IsCompressedPubKey(bytes []byte) bool {
	if len(bytes) != 33 {
		return false
	}
	if bytes[0] != 0x02 && bytes[0] != 0x03 {
		return false
	}
	return true
}
