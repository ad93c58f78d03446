package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/studyhub/internal/metrics"
	"github.com/hitoshi/studyhub/internal/model"
	"github.com/hitoshi/studyhub/internal/repository"
	"github.com/hitoshi/studyhub/internal/security"
)

// DropError は受信フレームを破棄した理由を表す。
type DropError struct {
	Reason string
	Err    error
}

func (e *DropError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame dropped (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("frame dropped (%s)", e.Reason)
}

func (e *DropError) Unwrap() error { return e.Err }

func drop(reason string, err error) *DropError {
	return &DropError{Reason: reason, Err: err}
}

// Relay は受信フレームを検証・保存し、Hub経由で全接続へ配信する。
type Relay struct {
	messages  repository.MessageRepository
	hub       *Hub
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
}

// NewRelay はRelayを生成する。
// sanitizerがnilの場合、本文は受信したまま保存・配信する。
func NewRelay(
	messages repository.MessageRepository,
	hub *Hub,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Relay {
	return &Relay{
		messages:  messages,
		hub:       hub,
		sanitizer: sanitizer,
		metrics:   collector,
		logger:    logger,
	}
}

// HandleFrame は1フレームを処理する。
// 保存と配信に成功した場合は保存済みメッセージを返す。
// 破棄した場合は*DropErrorを返すが、接続は維持し送信元へは何も通知しない。
func (r *Relay) HandleFrame(ctx context.Context, connID string, frame []byte) (*model.Message, error) {
	msg, err := r.handle(ctx, frame)
	if err != nil {
		var de *DropError
		if errors.As(err, &de) {
			r.metrics.RecordChatDropped(de.Reason)
		}
		level := slog.LevelWarn
		if de != nil && de.Reason == metrics.DropReasonUnknownType {
			level = slog.LevelDebug
		}
		r.logger.Log(ctx, level, "chat frame dropped",
			slog.String("conn_id", connID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return msg, nil
}

func (r *Relay) handle(ctx context.Context, frame []byte) (*model.Message, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, drop(metrics.DropReasonMalformed, err)
	}
	if env.Type != TypeChatMessage {
		return nil, drop(metrics.DropReasonUnknownType, fmt.Errorf("type %q", env.Type))
	}

	var data chatMessageData
	if len(env.Data) == 0 {
		return nil, drop(metrics.DropReasonInvalid, errors.New("data is missing"))
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, drop(metrics.DropReasonMalformed, err)
	}

	switch {
	case env.GroupID == 0:
		return nil, drop(metrics.DropReasonInvalid, errors.New("groupId is missing"))
	case data.UserID == 0:
		return nil, drop(metrics.DropReasonInvalid, errors.New("data.userId is missing"))
	case data.Content == "":
		return nil, drop(metrics.DropReasonInvalid, errors.New("data.content is missing"))
	}

	content := data.Content
	if r.sanitizer != nil {
		content = r.sanitizer.Sanitize(content)
		if content == "" {
			return nil, drop(metrics.DropReasonEmpty, errors.New("content is empty after sanitizing"))
		}
	}

	// 保存先はdata.groupIdを優先し、未指定の場合はエンベロープのgroupIdを使う
	groupID := data.GroupID
	if groupID == 0 {
		groupID = env.GroupID
	}

	msg := &model.Message{Content: content, GroupID: groupID, UserID: data.UserID}
	if err := r.messages.Create(ctx, msg); err != nil {
		return nil, drop(metrics.DropReasonPersist, err)
	}
	r.metrics.RecordChatMessage()

	out, err := newMessageFrame(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode new_message: %w", err)
	}
	r.hub.Broadcast(out)
	return msg, nil
}
