package services

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"time"

	"doggydate-backend/internal/models"
)

var errInjected = errors.New("injected persistence failure")

type pairKey [2]int64

// memStore is an in-memory database behind the repository interfaces.
// Transactions hold the store lock for their whole duration and restore a
// snapshot when fn fails.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*models.User
	pets     map[int64]*models.Pet
	vaccines map[int64]*models.Vaccine
	likes    map[pairKey]time.Time
	rejects  map[pairKey]time.Time
	chats    map[int64]*models.Chat
	messages []*models.Message

	nextID int64
	clock  time.Time
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*models.User),
		pets:     make(map[int64]*models.Pet),
		vaccines: make(map[int64]*models.Vaccine),
		likes:    make(map[pairKey]time.Time),
		rejects:  make(map[pairKey]time.Time),
		chats:    make(map[int64]*models.Chat),
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		failOn:   make(map[string]error),
	}
}

type memSnapshot struct {
	users    map[int64]*models.User
	pets     map[int64]*models.Pet
	vaccines map[int64]*models.Vaccine
	likes    map[pairKey]time.Time
	rejects  map[pairKey]time.Time
	chats    map[int64]*models.Chat
	messages []*models.Message
	nextID   int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:    make(map[int64]*models.User, len(s.users)),
		pets:     make(map[int64]*models.Pet, len(s.pets)),
		vaccines: make(map[int64]*models.Vaccine, len(s.vaccines)),
		likes:    make(map[pairKey]time.Time, len(s.likes)),
		rejects:  make(map[pairKey]time.Time, len(s.rejects)),
		chats:    make(map[int64]*models.Chat, len(s.chats)),
		nextID:   s.nextID,
	}
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range s.pets {
		snap.pets[k] = copyPet(v)
	}
	for k, v := range s.vaccines {
		c := *v
		snap.vaccines[k] = &c
	}
	for k, v := range s.likes {
		snap.likes[k] = v
	}
	for k, v := range s.rejects {
		snap.rejects[k] = v
	}
	for k, v := range s.chats {
		c := *v
		snap.chats[k] = &c
	}
	for _, m := range s.messages {
		c := *m
		snap.messages = append(snap.messages, &c)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.pets = snap.pets
	s.vaccines = snap.vaccines
	s.likes = snap.likes
	s.rejects = snap.rejects
	s.chats = snap.chats
	s.messages = snap.messages
	s.nextID = snap.nextID
}

// run executes fn under the store lock unless the caller is a transaction
// that already holds it
func (s *memStore) run(inTx bool, op string, fn func() error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.failOn[op]; err != nil {
		return err
	}
	return fn()
}

func (s *memStore) transaction(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Seeding helpers

func (s *memStore) addUser(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.users[id] = &models.User{ID: id, Name: name, Email: name + "@example.com", CreatedAt: s.now()}
	return id
}

func (s *memStore) addPet(ownerID int64, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.pets[id] = &models.Pet{ID: id, OwnerID: ownerID, Name: name, Images: []string{}}
	return id
}

func (s *memStore) addChat(userA, userB int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := models.NormalizePair(userA, userB)
	id := s.id()
	s.chats[id] = &models.Chat{ID: id, User1ID: low, User2ID: high, CreatedAt: s.now()}
	return id
}

func (s *memStore) addMessage(chatID, senderID int64, text string, read bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := &models.Message{ID: s.id(), ChatID: chatID, SenderID: senderID, Text: text, SentAt: s.now(), Read: read}
	s.messages = append(s.messages, msg)
	at := msg.SentAt
	s.chats[chatID].LastMessageAt = &at
	return msg.ID
}

func (s *memStore) chatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

func (s *memStore) chatsBetween(userA, userB int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := models.NormalizePair(userA, userB)
	n := 0
	for _, c := range s.chats {
		if c.User1ID == low && c.User2ID == high {
			n++
		}
	}
	return n
}

func (s *memStore) messageCount(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}

func (s *memStore) unreadFor(chatID, readerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ChatID == chatID && m.SenderID != readerID && !m.Read {
			n++
		}
	}
	return n
}

func copyPet(p *models.Pet) *models.Pet {
	c := *p
	c.Images = slices.Clone(p.Images)
	if c.Images == nil {
		c.Images = []string{}
	}
	return &c
}

// Users

type memUserRepo struct {
	s *memStore
}

func (r memUserRepo) Create(_ context.Context, user *models.User) error {
	return r.s.run(false, "users.Create", func() error {
		for _, u := range r.s.users {
			if u.Email == user.Email {
				return ErrEmailTaken
			}
		}
		user.ID = r.s.id()
		user.CreatedAt = r.s.now()
		u := *user
		r.s.users[u.ID] = &u
		return nil
	})
}

func (r memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := r.s.run(false, "users.GetByID", func() error {
		u, ok := r.s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		c := *u
		out = &c
		return nil
	})
	return out, err
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.run(false, "users.GetByEmail", func() error {
		for _, u := range r.s.users {
			if u.Email == email {
				c := *u
				out = &c
				return nil
			}
		}
		return ErrUserNotFound
	})
	return out, err
}

func (r memUserRepo) Update(_ context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	var out *models.User
	err := r.s.run(false, "users.Update", func() error {
		u, ok := r.s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.LastName != nil {
			u.LastName = *update.LastName
		}
		if update.Age != nil {
			u.Age = update.Age
		}
		if update.Location != nil {
			u.Location = *update.Location
		}
		if update.ProfileImage != nil {
			u.ProfileImage = update.ProfileImage
		}
		if update.PushToken != nil {
			u.PushToken = update.PushToken
		}
		c := *u
		out = &c
		return nil
	})
	return out, err
}

func (r memUserRepo) Delete(_ context.Context, id int64) error {
	return r.s.transaction(func() error {
		if _, ok := r.s.users[id]; !ok {
			return ErrUserNotFound
		}
		for chatID, c := range r.s.chats {
			if c.HasParticipant(id) {
				r.s.deleteChatLocked(chatID)
			}
		}
		r.s.messages = slices.DeleteFunc(r.s.messages, func(m *models.Message) bool { return m.SenderID == id })
		for petID, p := range r.s.pets {
			if p.OwnerID == id {
				r.s.deletePetLocked(petID)
			}
		}
		for k := range r.s.likes {
			if k[0] == id {
				delete(r.s.likes, k)
			}
		}
		for k := range r.s.rejects {
			if k[0] == id {
				delete(r.s.rejects, k)
			}
		}
		delete(r.s.users, id)
		return nil
	})
}

func (s *memStore) deleteChatLocked(chatID int64) {
	s.messages = slices.DeleteFunc(s.messages, func(m *models.Message) bool { return m.ChatID == chatID })
	delete(s.chats, chatID)
}

func (s *memStore) deletePetLocked(petID int64) {
	for id, v := range s.vaccines {
		if v.PetID == petID {
			delete(s.vaccines, id)
		}
	}
	for k := range s.likes {
		if k[1] == petID {
			delete(s.likes, k)
		}
	}
	for k := range s.rejects {
		if k[1] == petID {
			delete(s.rejects, k)
		}
	}
	delete(s.pets, petID)
}

// Pets

type memPetRepo struct {
	s    *memStore
	inTx bool
}

func (r memPetRepo) Transaction(_ context.Context, fn func(PetRepository) error) error {
	return r.s.transaction(func() error {
		return fn(memPetRepo{s: r.s, inTx: true})
	})
}

func (r memPetRepo) Create(_ context.Context, pet *models.Pet) error {
	return r.s.run(r.inTx, "pets.Create", func() error {
		pet.ID = r.s.id()
		r.s.pets[pet.ID] = copyPet(pet)
		return nil
	})
}

func (r memPetRepo) GetByID(_ context.Context, id int64) (*models.Pet, error) {
	var out *models.Pet
	err := r.s.run(r.inTx, "pets.GetByID", func() error {
		p, ok := r.s.pets[id]
		if !ok {
			return ErrPetNotFound
		}
		out = copyPet(p)
		return nil
	})
	return out, err
}

func (r memPetRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.Pet, error) {
	out := []*models.Pet{}
	err := r.s.run(r.inTx, "pets.ListByOwner", func() error {
		for _, p := range r.s.pets {
			if p.OwnerID == ownerID {
				out = append(out, copyPet(p))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memPetRepo) Update(_ context.Context, id int64, update models.PetUpdate) (*models.Pet, error) {
	var out *models.Pet
	err := r.s.run(r.inTx, "pets.Update", func() error {
		p, ok := r.s.pets[id]
		if !ok {
			return ErrPetNotFound
		}
		if update.Name != nil {
			p.Name = *update.Name
		}
		if update.Breed != nil {
			p.Breed = *update.Breed
		}
		if update.Age != nil {
			p.Age = update.Age
		}
		if update.Gender != nil {
			p.Gender = *update.Gender
		}
		if update.Traits != nil {
			p.Traits = *update.Traits
		}
		if update.Likes != nil {
			p.Likes = *update.Likes
		}
		if update.Images != nil {
			p.Images = slices.Clone(*update.Images)
		}
		out = copyPet(p)
		return nil
	})
	return out, err
}

func (r memPetRepo) AppendImage(_ context.Context, id int64, image string) (*models.Pet, error) {
	var out *models.Pet
	err := r.s.run(r.inTx, "pets.AppendImage", func() error {
		p, ok := r.s.pets[id]
		if !ok {
			return ErrPetNotFound
		}
		p.Images = append(p.Images, image)
		out = copyPet(p)
		return nil
	})
	return out, err
}

func (r memPetRepo) Delete(_ context.Context, id int64) error {
	return r.s.run(r.inTx, "pets.Delete", func() error {
		if _, ok := r.s.pets[id]; !ok {
			return ErrPetNotFound
		}
		r.s.deletePetLocked(id)
		return nil
	})
}

func (r memPetRepo) ListVaccines(_ context.Context, petID int64) ([]*models.Vaccine, error) {
	out := []*models.Vaccine{}
	err := r.s.run(r.inTx, "pets.ListVaccines", func() error {
		for _, v := range r.s.vaccines {
			if v.PetID == petID {
				c := *v
				out = append(out, &c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		return nil
	})
	return out, err
}

func (r memPetRepo) CreateVaccine(_ context.Context, vaccine *models.Vaccine) error {
	return r.s.run(r.inTx, "pets.CreateVaccine", func() error {
		if _, ok := r.s.pets[vaccine.PetID]; !ok {
			return ErrPetNotFound
		}
		vaccine.ID = r.s.id()
		c := *vaccine
		r.s.vaccines[c.ID] = &c
		return nil
	})
}

func (r memPetRepo) GetVaccine(_ context.Context, id int64) (*models.Vaccine, error) {
	var out *models.Vaccine
	err := r.s.run(r.inTx, "pets.GetVaccine", func() error {
		v, ok := r.s.vaccines[id]
		if !ok {
			return ErrVaccineNotFound
		}
		c := *v
		out = &c
		return nil
	})
	return out, err
}

func (r memPetRepo) UpdateVaccine(_ context.Context, id int64, update models.VaccineUpdate) (*models.Vaccine, error) {
	var out *models.Vaccine
	err := r.s.run(r.inTx, "pets.UpdateVaccine", func() error {
		v, ok := r.s.vaccines[id]
		if !ok {
			return ErrVaccineNotFound
		}
		if update.Name != nil {
			v.Name = *update.Name
		}
		if update.AppliedOn != nil {
			v.AppliedOn = update.AppliedOn
		}
		if update.Applied != nil {
			v.Applied = *update.Applied
		}
		if update.NextDue != nil {
			v.NextDue = update.NextDue
		}
		if update.Notes != nil {
			v.Notes = update.Notes
		}
		c := *v
		out = &c
		return nil
	})
	return out, err
}

func (r memPetRepo) DeleteVaccine(_ context.Context, id int64) error {
	return r.s.run(r.inTx, "pets.DeleteVaccine", func() error {
		if _, ok := r.s.vaccines[id]; !ok {
			return ErrVaccineNotFound
		}
		delete(r.s.vaccines, id)
		return nil
	})
}

func (s *memStore) vaccineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vaccines)
}

// Matches

type memMatchRepo struct {
	s    *memStore
	inTx bool
}

func (r memMatchRepo) Transaction(_ context.Context, fn func(MatchRepository) error) error {
	return r.s.transaction(func() error {
		return fn(memMatchRepo{s: r.s, inTx: true})
	})
}

func (r memMatchRepo) UserExists(_ context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.s.run(r.inTx, "matches.UserExists", func() error {
		_, ok = r.s.users[userID]
		return nil
	})
	return ok, err
}

func (r memMatchRepo) GetPetOwner(_ context.Context, petID int64) (int64, error) {
	var owner int64
	err := r.s.run(r.inTx, "matches.GetPetOwner", func() error {
		p, ok := r.s.pets[petID]
		if !ok {
			return ErrPetNotFound
		}
		owner = p.OwnerID
		return nil
	})
	return owner, err
}

func (r memMatchRepo) LockPair(context.Context, int64, int64) error {
	return r.s.run(r.inTx, "matches.LockPair", func() error { return nil })
}

func (r memMatchRepo) CreateLike(_ context.Context, userID, petID int64) (bool, error) {
	var created bool
	err := r.s.run(r.inTx, "matches.CreateLike", func() error {
		key := pairKey{userID, petID}
		if _, ok := r.s.likes[key]; ok {
			return nil
		}
		r.s.likes[key] = r.s.now()
		created = true
		return nil
	})
	return created, err
}

func (r memMatchRepo) HasLikeOnPetsOf(_ context.Context, likerID, ownerID int64) (bool, error) {
	var found bool
	err := r.s.run(r.inTx, "matches.HasLikeOnPetsOf", func() error {
		for k := range r.s.likes {
			if k[0] != likerID {
				continue
			}
			if p, ok := r.s.pets[k[1]]; ok && p.OwnerID == ownerID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r memMatchRepo) CreateChatIfAbsent(_ context.Context, userA, userB int64) (*models.Chat, bool, error) {
	var (
		out     *models.Chat
		created bool
	)
	err := r.s.run(r.inTx, "matches.CreateChatIfAbsent", func() error {
		low, high := models.NormalizePair(userA, userB)
		for _, c := range r.s.chats {
			if c.User1ID == low && c.User2ID == high {
				cp := *c
				out = &cp
				return nil
			}
		}
		chat := &models.Chat{ID: r.s.id(), User1ID: low, User2ID: high, CreatedAt: r.s.now()}
		r.s.chats[chat.ID] = chat
		cp := *chat
		out = &cp
		created = true
		return nil
	})
	return out, created, err
}

func (r memMatchRepo) CreateReject(_ context.Context, userID, petID int64) error {
	return r.s.run(r.inTx, "matches.CreateReject", func() error {
		key := pairKey{userID, petID}
		if _, ok := r.s.rejects[key]; !ok {
			r.s.rejects[key] = r.s.now()
		}
		return nil
	})
}

func (r memMatchRepo) ListAvailablePets(_ context.Context, userID int64, limit int) ([]*models.Pet, error) {
	out := []*models.Pet{}
	err := r.s.run(r.inTx, "matches.ListAvailablePets", func() error {
		for _, p := range r.s.pets {
			if p.OwnerID == userID {
				continue
			}
			if _, ok := r.s.likes[pairKey{userID, p.ID}]; ok {
				continue
			}
			if _, ok := r.s.rejects[pairKey{userID, p.ID}]; ok {
				continue
			}
			out = append(out, copyPet(p))
		}
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

// Chats

type memChatRepo struct {
	s    *memStore
	inTx bool
}

func (r memChatRepo) Transaction(_ context.Context, fn func(ChatRepository) error) error {
	return r.s.transaction(func() error {
		return fn(memChatRepo{s: r.s, inTx: true})
	})
}

func (r memChatRepo) GetByID(_ context.Context, chatID int64) (*models.Chat, error) {
	var out *models.Chat
	err := r.s.run(r.inTx, "chats.GetByID", func() error {
		c, ok := r.s.chats[chatID]
		if !ok {
			return ErrChatNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r memChatRepo) LockByIDs(_ context.Context, chatIDs []int64) ([]*models.Chat, error) {
	var out []*models.Chat
	err := r.s.run(r.inTx, "chats.LockByIDs", func() error {
		for _, id := range chatIDs {
			if c, ok := r.s.chats[id]; ok {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r memChatRepo) ListForUser(_ context.Context, userID int64) ([]*models.ChatSummary, error) {
	out := []*models.ChatSummary{}
	err := r.s.run(r.inTx, "chats.ListForUser", func() error {
		for _, c := range r.s.chats {
			if !c.HasParticipant(userID) {
				continue
			}
			otherID := c.OtherParticipant(userID)
			summary := &models.ChatSummary{Chat: *c, OtherUserID: otherID}
			if u, ok := r.s.users[otherID]; ok {
				summary.OtherUser = u.Public()
			}
			for _, m := range r.s.messages {
				if m.ChatID != c.ID {
					continue
				}
				cp := *m
				summary.LastMessage = &cp
				if m.SenderID != userID && !m.Read {
					summary.UnreadCount++
				}
			}
			out = append(out, summary)
		}
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i].LastMessageAt, out[j].LastMessageAt
			switch {
			case a == nil && b == nil:
				return out[i].ID > out[j].ID
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.After(*b)
			}
		})
		return nil
	})
	return out, err
}

func (r memChatRepo) ListMessages(_ context.Context, chatID int64) ([]*models.Message, error) {
	out := []*models.Message{}
	err := r.s.run(r.inTx, "chats.ListMessages", func() error {
		for _, m := range r.s.messages {
			if m.ChatID == chatID {
				cp := *m
				if u, ok := r.s.users[m.SenderID]; ok {
					cp.SenderName = u.Name
				}
				out = append(out, &cp)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].SentAt.Equal(out[j].SentAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].SentAt.Before(out[j].SentAt)
		})
		return nil
	})
	return out, err
}

func (r memChatRepo) MarkRead(_ context.Context, chatID, readerID int64) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, "chats.MarkRead", func() error {
		for _, m := range r.s.messages {
			if m.ChatID == chatID && m.SenderID != readerID && !m.Read {
				m.Read = true
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memChatRepo) CreateMessage(_ context.Context, chatID, senderID int64, text string) (*models.Message, error) {
	var out *models.Message
	err := r.s.run(r.inTx, "chats.CreateMessage", func() error {
		msg := &models.Message{ID: r.s.id(), ChatID: chatID, SenderID: senderID, Text: text, SentAt: r.s.now()}
		r.s.messages = append(r.s.messages, msg)
		cp := *msg
		if u, ok := r.s.users[senderID]; ok {
			cp.SenderName = u.Name
		}
		out = &cp
		return nil
	})
	return out, err
}

func (r memChatRepo) TouchLastMessage(_ context.Context, chatID int64, at time.Time) error {
	return r.s.run(r.inTx, "chats.TouchLastMessage", func() error {
		c, ok := r.s.chats[chatID]
		if !ok {
			return ErrChatNotFound
		}
		if c.LastMessageAt == nil || at.After(*c.LastMessageAt) {
			t := at
			c.LastMessageAt = &t
		}
		return nil
	})
}

func (r memChatRepo) DeleteWithMessages(_ context.Context, chatIDs []int64) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, "chats.DeleteWithMessages", func() error {
		for _, id := range chatIDs {
			if _, ok := r.s.chats[id]; ok {
				r.s.deleteChatLocked(id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64][]Notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(map[int64][]Notification)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, note Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[userID] = append(n.sent[userID], note)
	return nil
}

func (n *recordingNotifier) count(userID int64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent[userID])
}

// recordingRooms captures broadcasts and reports a fixed online set
type recordingRooms struct {
	mu     sync.Mutex
	events map[int64][]WSMessage
	online map[int64]bool
}

func newRecordingRooms(online ...int64) *recordingRooms {
	r := &recordingRooms{events: make(map[int64][]WSMessage), online: make(map[int64]bool)}
	for _, id := range online {
		r.online[id] = true
	}
	return r
}

func (r *recordingRooms) Broadcast(_ context.Context, chatID int64, msg WSMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[chatID] = append(r.events[chatID], msg)
	return nil
}

func (r *recordingRooms) IsOnline(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[userID]
}

func (r *recordingRooms) broadcasts(chatID int64) []WSMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events[chatID])
}
