package hashio

import (
	"crypto/md5" //nolint
	"crypto/sha1"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
)

const size = 512

type HashFunc func([]byte) ([]byte, error)

var (
	ErrHashFuncNotFound = errors.New("hash func not found")
	ErrHasherNotFound   = errors.New("hash alg is not supported")
)

// ReadAll reads r in blocks of the buffer size and returns the digest of everything read
func ReadAll(r io.Reader, hasher hash.Hash) ([]byte, error) {
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("read: %w", err)
		}
	}

	return hasher.Sum(nil), nil
}

// ReadFile returns the digest of a file in fsys
func ReadFile(fsys fs.FS, fileName string, hashFunc HashFunc) ([]byte, error) {
	if hashFunc == nil {
		return nil, ErrHashFuncNotFound
	}

	input, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileName, err)
	}

	output, err := hashFunc(input)
	if err != nil {
		return nil, fmt.Errorf("call HashFunc: %w", err)
	}

	return output, nil
}

func HashSumFunc(hasher func() hash.Hash) HashFunc {
	return func(in []byte) ([]byte, error) {
		h := hasher()
		if _, err := h.Write(in); err != nil {
			return nil, fmt.Errorf("%T(hashfile.Hash) write: %w", h, err)
		}

		return h.Sum(nil), nil
	}
}

func MD5() func() hash.Hash {
	return func() hash.Hash {
		return md5.New()
	}
}

func SHA1() func() hash.Hash {
	return func() hash.Hash {
		return sha1.New()
	}
}

// Hasher resolves the alg name of a -hash flag, md5 when empty
func Hasher(name string) (func() hash.Hash, error) {
	switch name {
	case "", "md5":
		return MD5(), nil
	case "sha1":
		return SHA1(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrHasherNotFound, name)
	}
}
