package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"gorm.io/gorm"
)

// MessageService handles per-order conversations between a customer and freelancers
type MessageService struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewMessageService creates a MessageService. A nil notifier disables notifications.
func NewMessageService(st store.Store, notifier Notifier, logger *slog.Logger) *MessageService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{store: st, notifier: notifier, logger: logger}
}

// SendInput is a new message from the caller
type SendInput struct {
	OrderID    uint
	ReceiverID uint
	Content    string
}

// Thread summarizes the conversation between the caller and one counterpart on an order
type Thread struct {
	OrderID         uint      `json:"order_id"`
	ParticipantID   uint      `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageAt   time.Time `json:"last_message_at"`
	UnreadCount     int       `json:"unread_count"`
}

func messageQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Message{}).
		Select("messages.*, su.username AS sender_name, ru.username AS receiver_name, o.title AS order_title").
		Joins("LEFT JOIN users su ON su.id = messages.sender_id").
		Joins("LEFT JOIN users ru ON ru.id = messages.receiver_id").
		Joins("LEFT JOIN orders o ON o.id = messages.order_id")
}

func (s *MessageService) find(ctx context.Context, order string, where string, args ...interface{}) ([]models.Message, error) {
	messages := []models.Message{}
	q := messageQuery(s.store.DB(ctx))
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Order(order).Find(&messages).Error; err != nil {
		return nil, storeError("failed to list messages", err, nil)
	}
	return messages, nil
}

func (s *MessageService) load(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := messageQuery(s.store.DB(ctx)).Where("messages.id = ?", id).Take(&msg).Error; err != nil {
		return nil, storeError("failed to load message", err, ErrMessageNotFound)
	}
	return &msg, nil
}

func (s *MessageService) loadOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.store.DB(ctx).First(&order, id).Error; err != nil {
		return nil, storeError("failed to load order", err, ErrOrderNotFound)
	}
	return &order, nil
}

// Send stores a message between the two parties of an order and publishes
// a notification for the receiver
func (s *MessageService) Send(ctx context.Context, caller policy.Caller, in SendInput) (*models.Message, error) {
	if in.OrderID == 0 || in.ReceiverID == 0 {
		return nil, Invalid("order_id and receiver_id are required")
	}
	if err := requireText("content", in.Content); err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMessage(caller, order) {
		return nil, ErrForbidden
	}
	if err := s.checkReceiver(ctx, caller, order, in.ReceiverID); err != nil {
		return nil, err
	}

	msg := models.Message{
		OrderID:    order.ID,
		SenderID:   caller.ID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
	}
	if err := s.store.DB(ctx).Create(&msg).Error; err != nil {
		return nil, storeError("failed to create message", err, nil)
	}

	if err := s.notifier.NotifyMessage(ctx, &msg); err != nil {
		s.logger.Warn("message notification failed", "message_id", msg.ID, "receiver_id", msg.ReceiverID, "error", err)
	}
	return s.load(ctx, msg.ID)
}

// checkReceiver makes sure the receiver is the other legitimate party of the order
func (s *MessageService) checkReceiver(ctx context.Context, caller policy.Caller, order *models.Order, receiverID uint) error {
	if receiverID == caller.ID {
		return ErrInvalidReceiver
	}
	switch caller.Role {
	case models.RoleFreelancer:
		if receiverID != order.CustomerID {
			return ErrInvalidReceiver
		}
		return nil
	case models.RoleCustomer:
		if order.FreelancerID != nil {
			if receiverID != *order.FreelancerID {
				return ErrInvalidReceiver
			}
			return nil
		}
	default:
		return ErrForbidden
	}

	// Customer on an unassigned order: only freelancers who engaged with it
	db := s.store.DB(ctx)
	var responded, wrote int64
	if err := db.Model(&models.OrderResponse{}).
		Where("order_id = ? AND freelancer_id = ?", order.ID, receiverID).
		Count(&responded).Error; err != nil {
		return storeError("failed to check receiver", err, nil)
	}
	if responded > 0 {
		return nil
	}
	if err := db.Model(&models.Message{}).
		Where("order_id = ? AND sender_id = ? AND receiver_id = ?", order.ID, receiverID, caller.ID).
		Count(&wrote).Error; err != nil {
		return storeError("failed to check receiver", err, nil)
	}
	if wrote == 0 {
		return ErrInvalidReceiver
	}
	return nil
}

// ListForOrder returns the order's messages, oldest first. The customer and
// admins see the whole order; a freelancer sees only their own conversation.
func (s *MessageService) ListForOrder(ctx context.Context, caller policy.Caller, orderID uint) ([]models.Message, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case policy.CanModerate(caller), caller.Role == models.RoleCustomer && policy.CanMessage(caller, order):
		return s.find(ctx, "messages.created_at ASC, messages.id ASC", "messages.order_id = ?", orderID)
	case caller.Role == models.RoleFreelancer && policy.CanMessage(caller, order):
		return s.find(ctx, "messages.created_at ASC, messages.id ASC",
			"messages.order_id = ? AND (messages.sender_id = ? OR messages.receiver_id = ?)", orderID, caller.ID, caller.ID)
	}
	return nil, ErrForbidden
}

// Conversation returns the messages exchanged between the caller and one participant on an order
func (s *MessageService) Conversation(ctx context.Context, caller policy.Caller, orderID, participantID uint) ([]models.Message, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMessage(caller, order) {
		return nil, ErrForbidden
	}
	return s.find(ctx, "messages.created_at ASC, messages.id ASC",
		"messages.order_id = ? AND ((messages.sender_id = ? AND messages.receiver_id = ?) OR (messages.sender_id = ? AND messages.receiver_id = ?))",
		orderID, caller.ID, participantID, participantID, caller.ID)
}

// Threads returns one entry per counterpart the caller talked to on an order, newest first
func (s *MessageService) Threads(ctx context.Context, caller policy.Caller, orderID uint) ([]Thread, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMessage(caller, order) {
		return nil, ErrForbidden
	}
	messages, err := s.find(ctx, "messages.created_at ASC, messages.id ASC",
		"messages.order_id = ? AND (messages.sender_id = ? OR messages.receiver_id = ?)", orderID, caller.ID, caller.ID)
	if err != nil {
		return nil, err
	}
	return BuildThreads(caller.ID, messages), nil
}

// BuildThreads groups messages by counterpart. A message from the
// counterpart is unread when it is newer than the caller's latest message
// to that counterpart, or when the caller never wrote to them.
func BuildThreads(callerID uint, messages []models.Message) []Thread {
	sorted := make([]models.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	threads := map[uint]*Thread{}
	lastReply := map[uint]time.Time{}
	var order []uint

	for _, m := range sorted {
		var other uint
		var name *string
		switch callerID {
		case m.SenderID:
			other, name = m.ReceiverID, m.ReceiverName
		case m.ReceiverID:
			other, name = m.SenderID, m.SenderName
		default:
			continue
		}

		t, ok := threads[other]
		if !ok {
			t = &Thread{OrderID: m.OrderID, ParticipantID: other}
			threads[other] = t
			order = append(order, other)
		}
		if name != nil {
			t.ParticipantName = *name
		}
		t.LastMessage = m.Content
		t.LastMessageAt = m.CreatedAt
		if m.SenderID == callerID {
			lastReply[other] = m.CreatedAt
		}
	}

	for _, m := range sorted {
		if m.ReceiverID != callerID {
			continue
		}
		if replied, ok := lastReply[m.SenderID]; !ok || m.CreatedAt.After(replied) {
			threads[m.SenderID].UnreadCount++
		}
	}

	out := make([]Thread, 0, len(order))
	for _, id := range order {
		out = append(out, *threads[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out
}

// ListAll returns every message, newest first (admin only)
func (s *MessageService) ListAll(ctx context.Context, caller policy.Caller) ([]models.Message, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.find(ctx, "messages.created_at DESC, messages.id DESC", "")
}

// Get returns one message (admin only)
func (s *MessageService) Get(ctx context.Context, caller policy.Caller, id uint) (*models.Message, error) {
	if !policy.CanModerate(caller) {
		return nil, ErrForbidden
	}
	return s.load(ctx, id)
}

// UpdateContent edits a message's content. Only the sender or an admin may do so.
func (s *MessageService) UpdateContent(ctx context.Context, caller policy.Caller, id uint, content string) (*models.Message, error) {
	if err := requireText("content", content); err != nil {
		return nil, err
	}
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditMessage(caller, msg) {
		return nil, ErrForbidden
	}
	if err := s.store.DB(ctx).Model(&models.Message{}).Where("id = ?", id).Update("content", content).Error; err != nil {
		return nil, storeError("failed to update message", err, nil)
	}
	return s.load(ctx, id)
}

// Delete removes a message (admin only)
func (s *MessageService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if !policy.CanModerate(caller) {
		return ErrForbidden
	}
	res := s.store.DB(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return storeError("failed to delete message", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
