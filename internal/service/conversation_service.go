package service

import (
	"context"

	"qu-assist-go/internal/model"
	"qu-assist-go/internal/repository"
)

// ConversationService 定义了会话历史的追加与读取操作。
type ConversationService interface {
	AppendTurn(ctx context.Context, sessionID, userMessage, botResponse string) error
	History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
}

type conversationService struct {
	sessionRepo repository.SessionRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(sessionRepo repository.SessionRepository) ConversationService {
	return &conversationService{sessionRepo: sessionRepo}
}

func (s *conversationService) AppendTurn(ctx context.Context, sessionID, userMessage, botResponse string) error {
	return s.sessionRepo.AppendTurn(ctx, sessionID, userMessage, botResponse)
}

func (s *conversationService) History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	return s.sessionRepo.History(ctx, sessionID, limit)
}
