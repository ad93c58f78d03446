package model

import "time"

// StudyGroup は勉強会グループを表す。
// 作成者は作成と同時にメンバーとして登録される。
type StudyGroup struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64
	CreatedAt   time.Time
	IsActive    bool
}

// GroupMember はユーザーとグループの所属関係を表す。
// (GroupID, UserID) の組はグループごとに高々1件。
type GroupMember struct {
	ID       int64
	GroupID  int64
	UserID   int64
	JoinedAt time.Time
}

// GroupWithCount はメンバー数を付与したグループ。
// MemberCount は保存されず、読み出し時に所属レコードから算出する。
type GroupWithCount struct {
	StudyGroup
	MemberCount int
}
