package crypto

const (
	// HKDFContext is the info string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "capsulevault:wallet-key:v1"

	// KeySize is the size of an XChaCha20-Poly1305 key in bytes.
	KeySize = 32
	// NonceSize is the size of an XChaCha20-Poly1305 nonce in bytes.
	NonceSize = 24
	// SaltSize is the size of a key-derivation salt in bytes.
	SaltSize = 32
	// TagSize is the size of the Poly1305 authentication tag in bytes.
	// It is the fixed length overhead of ciphertext over plaintext.
	TagSize = 16

	// HashSize is the size of a BLAKE3-256 content hash in bytes.
	HashSize = 32
	// HashHexSize is the length of a hex-encoded content hash.
	HashHexSize = HashSize * 2
)

// AlgsCiphersuite is the canonical string representation of the algorithm suite.
var AlgsCiphersuite = "XChaCha20-Poly1305:BLAKE3-256:HKDF-SHA-256"
