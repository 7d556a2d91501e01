package testutil

import (
	"context"
	"sync"

	"storechat/internal/client"
	"storechat/internal/types"
)

// FakeBackend is an in-memory support backend. Sent messages are stored as
// pending customer rows so later fetches return them.
type FakeBackend struct {
	mu sync.Mutex

	Messages []types.Message
	Orders   []types.Order

	FetchErr  error
	SendErr   error
	OrdersErr error
	CloseErr  map[int64]error

	Sent        []client.SendMessageRequest
	Closed      []int64
	FetchCalls  int
	OrdersCalls int

	nextID int64
}

func (b *FakeBackend) FetchMessages(ctx context.Context) ([]types.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FetchCalls++
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	out := make([]types.Message, len(b.Messages))
	copy(out, b.Messages)
	return out, nil
}

func (b *FakeBackend) SendMessage(ctx context.Context, req client.SendMessageRequest) (*client.SendMessageResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SendErr != nil {
		return nil, b.SendErr
	}
	b.Sent = append(b.Sent, req)
	msg := types.Message{
		ID:      b.allocID(),
		OrderID: req.OrderID,
		Text:    req.Message,
		Sender:  types.SenderCustomer,
		Status:  types.MessageStatusPending,
	}
	b.Messages = append(b.Messages, msg)
	return &client.SendMessageResponse{Message: &msg}, nil
}

func (b *FakeBackend) CloseMessage(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.CloseErr[id]; err != nil {
		return err
	}
	b.Closed = append(b.Closed, id)
	for i := range b.Messages {
		if b.Messages[i].ID == id {
			b.Messages[i].Status = types.MessageStatusClosed
		}
	}
	return nil
}

func (b *FakeBackend) ListOrders(ctx context.Context) ([]types.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.OrdersCalls++
	if b.OrdersErr != nil {
		return nil, b.OrdersErr
	}
	out := make([]types.Order, len(b.Orders))
	copy(out, b.Orders)
	return out, nil
}

// AgentSays appends an admin reply.
func (b *FakeBackend) AgentSays(text string) types.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := types.Message{
		ID:     b.allocID(),
		Text:   text,
		Sender: types.SenderAdmin,
		Status: types.MessageStatusReplied,
	}
	b.Messages = append(b.Messages, msg)
	return msg
}

func (b *FakeBackend) SentTexts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.Sent))
	for _, req := range b.Sent {
		out = append(out, req.Message)
	}
	return out
}

func (b *FakeBackend) ClosedIDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int64, len(b.Closed))
	copy(out, b.Closed)
	return out
}

func (b *FakeBackend) allocID() int64 {
	for _, msg := range b.Messages {
		if msg.ID > b.nextID {
			b.nextID = msg.ID
		}
	}
	b.nextID++
	return b.nextID
}
