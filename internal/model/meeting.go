package model

import "time"

// Meeting はグループの勉強会予定を表す。
// Date と Time はクライアント入力をそのまま保持し、時刻として結合しない。
type Meeting struct {
	ID        int64
	Title     string
	Date      string
	Time      string
	GroupID   int64
	CreatedBy int64
	CreatedAt time.Time
}

// Note はグループで共有されるノートを表す。
type Note struct {
	ID         int64
	Title      string
	FileType   string
	GroupID    int64
	UploadedBy int64
	UploadedAt time.Time
	FileURL    string
}
