package handlers

import (
	"context"
	"sync"
	"time"

	"doggydate-backend/internal/models"
	"doggydate-backend/internal/services"
)

// fakeUsers is a map-backed services.UserRepository
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*models.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return services.ErrEmailTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	u := *user
	f.users[u.ID] = &u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (f *fakeUsers) Update(_ context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return services.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeChats is a map-backed services.ChatRepository. Transactions do not
// roll back.
type fakeChats struct {
	mu       sync.Mutex
	nextID   int64
	chats    map[int64]*models.Chat
	messages []*models.Message
}

func newFakeChats() *fakeChats {
	return &fakeChats{chats: make(map[int64]*models.Chat)}
}

func (f *fakeChats) add(userA, userB int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	low, high := models.NormalizePair(userA, userB)
	f.nextID++
	f.chats[f.nextID] = &models.Chat{ID: f.nextID, User1ID: low, User2ID: high, CreatedAt: time.Now()}
	return f.nextID
}

func (f *fakeChats) Transaction(_ context.Context, fn func(services.ChatRepository) error) error {
	return fn(f)
}

func (f *fakeChats) GetByID(_ context.Context, chatID int64) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok {
		return nil, services.ErrChatNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChats) LockByIDs(_ context.Context, chatIDs []int64) ([]*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Chat
	for _, id := range chatIDs {
		if c, ok := f.chats[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeChats) ListForUser(_ context.Context, userID int64) ([]*models.ChatSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.ChatSummary{}
	for _, c := range f.chats {
		if c.HasParticipant(userID) {
			out = append(out, &models.ChatSummary{Chat: *c, OtherUserID: c.OtherParticipant(userID)})
		}
	}
	return out, nil
}

func (f *fakeChats) ListMessages(_ context.Context, chatID int64) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Message{}
	for _, m := range f.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeChats) MarkRead(_ context.Context, chatID, readerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.messages {
		if m.ChatID == chatID && m.SenderID != readerID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeChats) CreateMessage(_ context.Context, chatID, senderID int64, text string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg := &models.Message{ID: f.nextID, ChatID: chatID, SenderID: senderID, Text: text, SentAt: time.Now()}
	f.messages = append(f.messages, msg)
	cp := *msg
	return &cp, nil
}

func (f *fakeChats) TouchLastMessage(_ context.Context, chatID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok {
		return services.ErrChatNotFound
	}
	c.LastMessageAt = &at
	return nil
}

func (f *fakeChats) DeleteWithMessages(_ context.Context, chatIDs []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range chatIDs {
		if _, ok := f.chats[id]; ok {
			delete(f.chats, id)
			n++
		}
	}
	kept := f.messages[:0]
	for _, m := range f.messages {
		if _, ok := f.chats[m.ChatID]; ok {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return n, nil
}

func (f *fakeChats) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}
