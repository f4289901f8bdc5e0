package models

import "time"

// Export представляет запись о выгрузке коллекции подкатов в объектное хранилище.
type Export struct {
	ID        int64     `db:"id" json:"id"`
	ObjectKey string    `db:"object_key" json:"object_key"`
	LineCount int       `db:"line_count" json:"line_count"`
	CreatedBy int64     `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ExportResponse представляет тело ответа на запрос выгрузки.
type ExportResponse struct {
	ObjectKey string `json:"object_key"`
	Count     int    `json:"count"`
}
