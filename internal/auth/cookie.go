package auth

import (
	"fmt"

	"github.com/gorilla/securecookie"
)

// SessionCookieName はセッションCookieの名前。
const SessionCookieName = "session_id"

// CookieCodec はセッションIDをHMAC署名付きのCookie値に変換する。
// 署名が一致しない値や有効期限を過ぎた値は復号できない。
type CookieCodec struct {
	sc *securecookie.SecureCookie
}

// NewCookieCodec はCookieCodecを生成する。maxAgeは署名のタイムスタンプ有効期間（秒）。
func NewCookieCodec(secret []byte, maxAge int) *CookieCodec {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(maxAge)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &CookieCodec{sc: sc}
}

// Encode はセッションIDを署名付きのCookie値にする。
func (c *CookieCodec) Encode(sessionID string) (string, error) {
	v, err := c.sc.Encode(SessionCookieName, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to encode session cookie: %w", err)
	}
	return v, nil
}

// Decode は署名を検証してセッションIDを取り出す。
func (c *CookieCodec) Decode(value string) (string, error) {
	var sessionID string
	if err := c.sc.Decode(SessionCookieName, value, &sessionID); err != nil {
		return "", fmt.Errorf("failed to decode session cookie: %w", err)
	}
	return sessionID, nil
}
