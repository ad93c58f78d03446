// Package chat はWebSocketによるグループチャットの中継と履歴取得を提供する。
//
// 受信したチャットメッセージは保存された後、接続中の全クライアントへ配信される。
// 配信先はグループで絞り込まない。不正なフレームはサーバー側でログに記録して破棄し、
// 送信元へのエラー通知や受信確認は行わない。
package chat

import (
	"encoding/json"
	"time"

	"github.com/hitoshi/studyhub/internal/model"
)

// メッセージ種別
const (
	TypeChatMessage = "chat_message"
	TypeNewMessage  = "new_message"
)

// inboundEnvelope はクライアントから受信するフレーム。
type inboundEnvelope struct {
	Type    string          `json:"type"`
	GroupID int64           `json:"groupId"`
	Data    json.RawMessage `json:"data"`
}

// chatMessageData は chat_message の data 部。
type chatMessageData struct {
	Content string `json:"content"`
	GroupID int64  `json:"groupId"`
	UserID  int64  `json:"userId"`
}

// outboundEnvelope はクライアントへ配信するフレーム。
type outboundEnvelope struct {
	Type string         `json:"type"`
	Data messagePayload `json:"data"`
}

// messagePayload は保存済みメッセージのJSON表現。
type messagePayload struct {
	ID      int64     `json:"id"`
	Content string    `json:"content"`
	GroupID int64     `json:"groupId"`
	UserID  int64     `json:"userId"`
	SentAt  time.Time `json:"sentAt"`
}

func newMessageFrame(m *model.Message) ([]byte, error) {
	return json.Marshal(outboundEnvelope{
		Type: TypeNewMessage,
		Data: messagePayload{
			ID:      m.ID,
			Content: m.Content,
			GroupID: m.GroupID,
			UserID:  m.UserID,
			SentAt:  m.SentAt,
		},
	})
}
