package interfaces

import (
	"context"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/model"
)

// EventFetcher 外部 FIS 数据源：按 event id 拉取赛事信息（只读）
type EventFetcher interface {
	FetchEvent(ctx context.Context, eventID uint64) (*model.EventData, error)
}

// EventRefresher is implemented by fetchers that cache: RefreshEvent always goes upstream.
type EventRefresher interface {
	RefreshEvent(ctx context.Context, eventID uint64) (*model.EventData, error)
}

// Email one outgoing message. From overrides the configured sender when set.
type Email struct {
	To      []string
	CC      []string
	From    string
	Subject string
	HTML    string
}

// Mailer 事务邮件发送，发出即返回，不跟踪投递结果
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// UserDirectory resolves identity-provider user ids to display names.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
