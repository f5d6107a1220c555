package shortener

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// IDLength задает длину ключа, полученного из хеша исходной ссылки.
const IDLength = 5

// Hash возвращает ключ сокращенной ссылки: первые IDLength символов
// хеша BLAKE3 исходной ссылки в шестнадцатеричном виде.
func Hash(url string) string {
	sum := blake3.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:IDLength]
}
