package model

import "time"

// Message はグループチャットのメッセージを表す。
type Message struct {
	ID      int64
	Content string
	GroupID int64
	UserID  int64
	SentAt  time.Time
}

// AuthorSummary はメッセージ投稿者の公開情報。
type AuthorSummary struct {
	ID       int64
	Name     string
	Username string
}

// MessageWithAuthor は投稿者情報を付与したメッセージ。
// 投稿者が解決できない場合 Author は nil。
type MessageWithAuthor struct {
	Message
	Author *AuthorSummary
}
