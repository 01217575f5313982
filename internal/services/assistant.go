package services

import (
	"context"
	"fmt"

	"ewaste-recycle-backend/internal/workflow"
)

// Responder answers free-text questions.
type Responder interface {
	Answer(ctx context.Context, question string) (string, error)
}

// AssistantService answers recycling questions through the hosted model.
// Stateless: chat history stays on the client.
type AssistantService struct {
	responder Responder
}

// NewAssistantService creates a new assistant service
func NewAssistantService(responder Responder) *AssistantService {
	return &AssistantService{responder: responder}
}

// Ask forwards a question to the model
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	answer, err := s.responder.Answer(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: assistant: %v", workflow.ErrUnavailable, err)
	}
	return answer, nil
}
