package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/authsys-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// argonParams captures the Argon2id parameters embedded into each hash string.
type argonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Hasher performs one-way password hashing and verification.
type Hasher struct {
	params argonParams
}

// NewHasher builds a Hasher from configuration, clamping parameters to sane ranges.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	threads := clampInt(cfg.ArgonParallelism, 1, 255)
	return &Hasher{params: argonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(threads),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}}
}

// Hash returns a formatted Argon2id hash for the provided password. The output
// carries algorithm parameters and salt so Verify needs only the stored string.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encDigest := base64.RawStdEncoding.EncodeToString(digest)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", h.params.Memory, h.params.Time, h.params.Parallelism, encSalt, encDigest), nil
}

// Verify reports whether the password matches the encoded hash. Malformed
// input is never an error; it simply fails verification.
func (h *Hasher) Verify(password, encoded string) bool {
	params, salt, digest, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	return subtle.ConstantTimeCompare(digest, computed) == 1
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
	}

	var params argonParams
	for _, token := range strings.Split(parts[3], ",") {
		keyValue := strings.SplitN(token, "=", 2)
		if len(keyValue) != 2 {
			return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
		}
		key, value := keyValue[0], keyValue[1]
		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
			}
			params.Memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
			}
			params.Time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
			}
			params.Parallelism = uint8(v)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argonParams{}, nil, nil, fmt.Errorf("invalid argon2id hash")
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(digest))

	return params, salt, digest, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
