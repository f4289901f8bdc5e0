package models

import "time"

// PickupLine представляет одну запись «подката» — основную сущность приложения.
// Contributor хранится как свободный текст, а не внешний ключ на пользователя.
type PickupLine struct {
	ID          string    `db:"id" json:"id"`
	Line        string    `db:"line" json:"line"`
	Contributor string    `db:"contributor" json:"contributor"`
	Category    string    `db:"category" json:"category"`
	Mood        string    `db:"mood" json:"mood"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LineRequest представляет тело запроса на создание или обновление записи.
type LineRequest struct {
	Line        string `json:"line"`
	Contributor string `json:"contributor"`
	Category    string `json:"category"`
	Mood        string `json:"mood"`
}
