package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type mockConversationRepository struct {
	conversations map[uuid.UUID]*entity.Conversation
}

func (m *mockConversationRepository) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error) {
	for _, c := range m.conversations {
		if c.JobID == conv.JobID && c.ClientID == conv.ClientID && c.FreelancerID == conv.FreelancerID {
			return c, nil
		}
	}
	m.conversations[conv.ID] = conv
	return conv, nil
}

func (m *mockConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	if c, ok := m.conversations[id]; ok {
		return c, nil
	}
	return nil, apperror.ErrConversationNotFound
}

func (m *mockConversationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var result []*entity.Conversation
	for _, c := range m.conversations {
		if c.IsParticipant(userID) {
			result = append(result, c)
		}
	}
	return result, nil
}

type mockMessageRepository struct {
	messages []*entity.Message
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *entity.Message) (bool, error) {
	for _, existing := range m.messages {
		if msg.EventID != nil && existing.EventID != nil && *existing.EventID == *msg.EventID {
			return false, nil
		}
	}
	m.messages = append(m.messages, msg)
	return true, nil
}

func (m *mockMessageRepository) FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var result []*entity.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func TestChatService_PostJobCard(t *testing.T) {
	convs := &mockConversationRepository{conversations: make(map[uuid.UUID]*entity.Conversation)}
	msgs := &mockMessageRepository{}
	pusher := new(mockPusher)
	svc := NewChatService(convs, msgs, pusher)

	card := entity.JobCard{
		JobID:        uuid.New(),
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		JobTitle:     "Лендинг на Go",
		BudgetMin:    100,
		BudgetMax:    500,
		Currency:     "USD",
		Note:         "Посмотрите, пожалуйста",
	}
	eventID := uuid.New()
	pusher.On("BroadcastToUser", card.FreelancerID, EventChatMessage, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.PostJobCard(context.Background(), eventID, card))
	require.NoError(t, svc.PostJobCard(context.Background(), eventID, card))

	assert.Len(t, convs.conversations, 1)
	require.Len(t, msgs.messages, 1)
	msg := msgs.messages[0]
	assert.Equal(t, entity.MessageTypeJobCard, msg.MessageType)
	assert.Equal(t, card.ClientID, msg.SenderID)
	assert.Contains(t, msg.Content, "Лендинг на Go")
	assert.Contains(t, msg.Content, "Посмотрите, пожалуйста")

	pusher.AssertExpectations(t)
}

func TestChatService_PostJobCardReusesConversation(t *testing.T) {
	convs := &mockConversationRepository{conversations: make(map[uuid.UUID]*entity.Conversation)}
	msgs := &mockMessageRepository{}
	svc := NewChatService(convs, msgs, nil)

	card := entity.JobCard{JobID: uuid.New(), ClientID: uuid.New(), FreelancerID: uuid.New(), JobTitle: "A"}
	require.NoError(t, svc.PostJobCard(context.Background(), uuid.New(), card))
	require.NoError(t, svc.PostJobCard(context.Background(), uuid.New(), card))

	assert.Len(t, convs.conversations, 1)
	assert.Len(t, msgs.messages, 2)
	assert.Equal(t, msgs.messages[0].ConversationID, msgs.messages[1].ConversationID)
}

func TestChatService_PostJobCardToSelf(t *testing.T) {
	id := uuid.New()
	svc := NewChatService(&mockConversationRepository{conversations: map[uuid.UUID]*entity.Conversation{}}, &mockMessageRepository{}, nil)

	err := svc.PostJobCard(context.Background(), uuid.New(), entity.JobCard{JobID: uuid.New(), ClientID: id, FreelancerID: id})
	assert.True(t, apperror.IsValidation(err))
}
