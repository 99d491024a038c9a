package ethcrypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureLength is the size of an [R || S || V] signature.
const SignatureLength = 65

var (
	// ErrInvalidPrivateKey indicates the private key is not a valid secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidSignature indicates the signature is malformed or does not recover.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidHashLength indicates the hash length is not 32 bytes.
	ErrInvalidHashLength = errors.New("hash must be 32 bytes")

	// ErrInvalidPublicKeyPrefix indicates an invalid public key prefix.
	ErrInvalidPublicKeyPrefix = errors.New("invalid public key prefix")

	// ErrInvalidPublicKeyLength indicates an invalid public key length.
	ErrInvalidPublicKeyLength = errors.New("invalid public key length")
)

// Signature is a secp256k1 signature split into its Ethereum components.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte // recovery id, 0 or 1
}

// Bytes returns the signature in [R || S || V] form.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[0:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// ValidatePrivateKey checks that privateKey is a 32-byte scalar in [1, n-1].
// Values outside that range would otherwise be silently reduced modulo n.
func ValidatePrivateKey(privateKey []byte) error {
	if len(privateKey) != 32 {
		return ErrInvalidPrivateKey
	}

	var k secp256k1.ModNScalar
	overflow := k.SetByteSlice(privateKey)
	defer k.Zero()
	if overflow || k.IsZero() {
		return ErrInvalidPrivateKey
	}
	return nil
}

// Sign signs the given hash with the private key and returns a 65-byte signature.
// The signature format is [R || S || V] where V is the recovery ID (0 or 1).
// Signing is deterministic (RFC 6979) and produces low-S signatures.
func Sign(hash, privateKey []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, ErrInvalidHashLength
	}
	if err := ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}

	privKey := secp256k1.PrivKeyFromBytes(privateKey)
	defer privKey.Zero()

	// SignCompact returns [V || R || S] where V is recovery ID + 27
	sig := ecdsa.SignCompact(privKey, hash, false)
	if len(sig) != SignatureLength {
		return nil, ErrInvalidSignature
	}

	result := make([]byte, SignatureLength)
	copy(result[0:64], sig[1:65])
	result[64] = sig[0] - 27
	return result, nil
}

// SignHash signs a 32-byte digest and returns the split signature.
func SignHash(hash [HashLength]byte, privateKey []byte) (Signature, error) {
	raw, err := Sign(hash[:], privateKey)
	if err != nil {
		return Signature{}, err
	}

	var sig Signature
	copy(sig.R[:], raw[0:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	return sig, nil
}

// RecoverAddress returns the address whose key produced sig over hash.
func RecoverAddress(hash []byte, sig Signature) (Address, error) {
	if len(hash) != 32 {
		return Address{}, ErrInvalidHashLength
	}
	if sig.V > 1 {
		return Address{}, ErrInvalidSignature
	}

	compact := make([]byte, SignatureLength)
	compact[0] = sig.V + 27
	copy(compact[1:33], sig.R[:])
	copy(compact[33:65], sig.S[:])

	pubKey, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return Address{}, errors.Join(ErrInvalidSignature, err)
	}

	addr, err := PublicKeyToAddress(pubKey.SerializeUncompressed())
	if err != nil {
		return Address{}, err
	}
	return BytesToAddress(addr), nil
}

// PrivateKeyToPublicKey derives the public key from a private key.
// Returns the uncompressed public key (65 bytes: 0x04 || X || Y).
func PrivateKeyToPublicKey(privateKey []byte) ([]byte, error) {
	if err := ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}

	privKey := secp256k1.PrivKeyFromBytes(privateKey)
	defer privKey.Zero()
	return privKey.PubKey().SerializeUncompressed(), nil
}

// PublicKeyToAddress derives an Ethereum address from an uncompressed public key.
// The public key should be 65 bytes (0x04 prefix + 64 bytes X,Y coordinates)
// or 64 bytes (just the X,Y coordinates without prefix).
func PublicKeyToAddress(publicKey []byte) ([]byte, error) {
	var pubKeyBytes []byte

	switch len(publicKey) {
	case 65:
		if publicKey[0] != 0x04 {
			return nil, ErrInvalidPublicKeyPrefix
		}
		pubKeyBytes = publicKey[1:]
	case 64:
		pubKeyBytes = publicKey
	default:
		return nil, ErrInvalidPublicKeyLength
	}

	// The address is the last 20 bytes of the hash of the X,Y coordinates
	hash := Keccak256(pubKeyBytes)
	return hash[12:], nil
}

// DeriveAddress derives an Ethereum address from a private key.
func DeriveAddress(privateKey []byte) (Address, error) {
	pubKey, err := PrivateKeyToPublicKey(privateKey)
	if err != nil {
		return Address{}, err
	}
	addr, err := PublicKeyToAddress(pubKey)
	if err != nil {
		return Address{}, err
	}
	return BytesToAddress(addr), nil
}
