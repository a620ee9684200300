package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
)

const (
	chatFallbackReply = "I'm sorry, I couldn't process your request. Please try again later."
	chatDisclaimer    = "\n\n*Note: I'm an AI assistant. For specific questions about your account, please contact our support team.*"
)

const counselorPrompt = `You are EduGenie, an AI education counselor for the EduReach teacher platform. Your primary role is to assist teachers with their professional development and career growth.

## Your Capabilities:
1. Provide information about the platform's features and services
2. Guide teachers to relevant courses and resources
3. Offer advice on teaching methodologies and classroom strategies
4. Help with career development in education
5. Explain membership plans and benefits

## Guidelines:
- Be professional, supportive and empathetic
- Keep responses concise and focused on educational topics
- If you don't know an answer, direct the teacher to contact support
- If asked about sensitive topics, politely steer the conversation back to education

## Membership Plans:
1. Basic: free access to limited resources
2. Premium: full access to all courses and resources
3. Institutional: for schools and educational institutions

## Courses:
Classroom Management, Innovative Teaching Methods, Educational Technology,
Student Engagement Strategies, Special Education, Leadership in Education.`

type ChatUseCase struct {
	Completer     ChatCompleter
	Conversations ConversationRepository
	Logger        *slog.Logger
	Now           func() time.Time
}

func NewChatUseCase(completer ChatCompleter, conversations ConversationRepository, logger *slog.Logger) *ChatUseCase {
	return &ChatUseCase{
		Completer:     completer,
		Conversations: conversations,
		Logger:        logger,
		Now:           time.Now,
	}
}

func (uc *ChatUseCase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	errs := validateStruct(input)
	for _, m := range input.Messages {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			errs = append(errs, ValidationError{"messages", "role must be user or assistant"})
			break
		}
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Now()
	history := make([]entity.Message, 0, len(input.Messages))
	for _, m := range input.Messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		history = append(history, m)
	}

	prompt := append([]entity.Message{{Role: entity.RoleSystem, Content: counselorPrompt}}, history...)
	reply, err := uc.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "failed to process your message", Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		reply = chatFallbackReply
	}
	reply += chatDisclaimer

	answer := entity.Message{Role: entity.RoleAssistant, Content: reply, Timestamp: uc.Now()}
	out := &ChatOutput{Content: reply}
	out.ConversationID = uc.persist(ctx, input, history, answer)
	return out, nil
}

// persist stores the exchange for the lead. An existing conversation only
// receives the latest user turn and the reply, and must belong to the lead;
// otherwise a new transcript is created. Failures are logged and never surface
// to the caller.
func (uc *ChatUseCase) persist(ctx context.Context, input ChatInput, history []entity.Message, answer entity.Message) string {
	leadID := strings.TrimSpace(input.LeadID)
	if leadID == "" {
		return ""
	}

	if id := strings.TrimSpace(input.ConversationID); id != "" {
		appended := []entity.Message{history[len(history)-1], answer}
		if _, err := uc.Conversations.AppendMessages(ctx, id, leadID, appended); err != nil {
			uc.Logger.Error("failed to append conversation",
				slog.String("conversation_id", id),
				slog.String("lead_id", leadID),
				slog.String("error", err.Error()),
			)
			return ""
		}
		return id
	}

	conv := entity.NewConversation(leadID, append(history, answer))
	if err := uc.Conversations.Create(ctx, conv); err != nil {
		uc.Logger.Error("failed to save conversation",
			slog.String("lead_id", leadID),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return conv.ID
}

type GetConversationUseCase struct {
	Conversations ConversationRepository
}

func NewGetConversationUseCase(conversations ConversationRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Conversations: conversations}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, email string) (*ConversationOutput, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, validationFailed([]ValidationError{{"email", "is required"}})
	}

	conv, err := uc.Conversations.FindLatestByLeadEmail(ctx, email)
	if errors.Is(err, entity.ErrConversationNotFound) || (err == nil && conv == nil) {
		return &ConversationOutput{Messages: []entity.Message{}}, nil
	}
	if err != nil {
		return nil, databaseError("failed to load conversation", err)
	}

	messages := conv.Messages
	if messages == nil {
		messages = []entity.Message{}
	}
	return &ConversationOutput{ConversationID: conv.ID, Messages: messages}, nil
}
