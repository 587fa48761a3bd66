// Package devicekey содержит функции работы с идентификационными данными устройств:
// необратимое хэширование MAC-адреса и генерацию секрета устройства.
//
// Сырой MAC-адрес никогда не сохраняется — в базе хранится только его хэш.
// Секрет устройства выдается ровно один раз при регистрации и служит
// credential'ом самого устройства для heartbeat-запросов.
package devicekey

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// MACHash возвращает hex-представление SHA-256 хэша MAC-адреса.
// Детерминированная функция: один и тот же MAC всегда дает один хэш,
// за счет чего обеспечивается глобальная уникальность устройств.
func MACHash(macAddress string) string {
	sum := sha256.Sum256([]byte(macAddress))
	return hex.EncodeToString(sum[:])
}

// NewSecret генерирует случайный секрет устройства длиной 32 hex-символа.
func NewSecret() string {
	sum := sha256.Sum256([]byte(uuid.New().String()))
	return hex.EncodeToString(sum[:])[:32]
}
