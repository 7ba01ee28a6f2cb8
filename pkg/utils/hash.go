package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// PathHash returns the catalog hash of a path: the lowercase hex MD5 of its bytes.
// It matches MD5() on MySQL and md5() on PostgreSQL.
func PathHash(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}
