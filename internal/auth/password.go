package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params はパスワードハッシュのコストパラメータ。
// OWASPのパスワード保存ガイドラインに沿った値を既定とする。
type argon2Params struct {
	memory      uint32 // メモリコスト（KiB）
	iterations  uint32 // 反復回数（時間コスト）
	parallelism uint8  // 並列度
	saltLength  uint32 // ソルト長（バイト）
	keyLength   uint32 // 導出鍵長（バイト）
}

// defaultArgon2Params は既定のコストパラメータを返す。
func defaultArgon2Params() argon2Params {
	return argon2Params{
		memory:      64 * 1024, // 64 MB
		iterations:  3,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
	}
}

// HashPassword はパスワードをargon2idでハッシュ化し、
// パラメータ・ソルト・ハッシュを1つのエンコード文字列にまとめて返す。
// ソルトはアカウントごとに暗号的乱数で生成する。
func HashPassword(password string) (string, error) {
	p := defaultArgon2Params()

	salt := make([]byte, p.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// VerifyPassword はエンコード済みハッシュに対してパスワードを検証する。
// 比較は定数時間で行う。
func VerifyPassword(password, encodedHash string) (bool, error) {
	p, salt, hash, err := decodePasswordHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// decodePasswordHash はエンコード文字列からパラメータ・ソルト・ハッシュを復元する。
func decodePasswordHash(encodedHash string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, errors.New("invalid password hash format")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, errors.New("unsupported password hash algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("invalid password hash version: %w", err)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("invalid password hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid password hash salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid password hash value: %w", err)
	}

	p.keyLength = uint32(len(hash))
	return p, salt, hash, nil
}
