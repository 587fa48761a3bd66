package models

import "time"

// Device представляет зарегистрированное устройство пользователя.
// Сырой MAC-адрес не хранится, только его необратимый хэш.
type Device struct {
	ID           string     // Уникальный идентификатор устройства
	UserID       string     // Владелец устройства
	MACHash      string     // SHA-256 хэш MAC-адреса, уникален во всей системе
	CPUID        string     // Идентификатор процессора
	Hostname     string     // Имя хоста
	OSVersion    string     // Версия операционной системы
	DeviceSecret string     // Секрет устройства для heartbeat-аутентификации
	Online       bool       // Признак того, что устройство в сети
	LastSeen     *time.Time // Время последнего heartbeat
	CreatedAt    time.Time  // Дата регистрации устройства
}

// DeviceView публичное представление устройства: секрет не сериализуется.
type DeviceView struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	MACHash   string     `json:"mac_hash"`
	CPUID     string     `json:"cpu_id"`
	Hostname  string     `json:"hostname"`
	OSVersion string     `json:"os_version,omitempty"`
	Online    bool       `json:"online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// View конвертирует Device в публичное представление без секрета.
func (d *Device) View() DeviceView {
	return DeviceView{
		ID:        d.ID,
		UserID:    d.UserID,
		MACHash:   d.MACHash,
		CPUID:     d.CPUID,
		Hostname:  d.Hostname,
		OSVersion: d.OSVersion,
		Online:    d.Online,
		LastSeen:  d.LastSeen,
		CreatedAt: d.CreatedAt,
	}
}
