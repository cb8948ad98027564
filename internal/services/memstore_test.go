package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"
)

// memUserStore is an in-memory UserStore. Reads return deep copies and Save
// rewrites the whole document unconditionally, mirroring the production
// store's last-write-wins behavior.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	order []string
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	s.order = append(s.order, user.ID)
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "user not found")
	}
	return cloneUser(user), nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.users[id].Email == email {
			return cloneUser(s.users[id]), nil
		}
	}
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (s *memUserStore) GetAll(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneUser(s.users[id]))
	}
	return out, nil
}

func (s *memUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	delete(s.users, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Likes = append([]string(nil), u.Likes...)
	out.Nopes = append([]string(nil), u.Nopes...)
	out.Reveals = append([]string(nil), u.Reveals...)
	out.Pictures = append([]models.Picture(nil), u.Pictures...)
	out.Reports = append([]models.Report(nil), u.Reports...)
	return &out
}

// memMessageStore is an in-memory MessageStore with switchable failure modes
type memMessageStore struct {
	mu         sync.Mutex
	messages   []*models.Message
	failCreate bool
	failList   bool
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{}
}

func (s *memMessageStore) Create(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return apperrors.New(apperrors.Persistence, "store unavailable")
	}
	copied := *message
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *memMessageStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.New(apperrors.NotFound, "message not found")
}

func (s *memMessageStore) GetAll(_ context.Context) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memMessageStore) ListBySender(_ context.Context, senderID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, apperrors.New(apperrors.Persistence, "store unavailable")
	}
	var out []*models.Message
	for _, m := range s.messages {
		if m.Sender == senderID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memMessageStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.Read = true
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "message not found")
}

func (s *memMessageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "message not found")
}

func (s *memMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *memMessageStore) add(sender, receiver, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, &models.Message{
		ID:        fmt.Sprintf("msg-%d", len(s.messages)+1),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// memBlobStore is an in-memory BlobStore
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return "mem://" + key, nil
}

func (s *memBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return apperrors.New(apperrors.NotFound, "blob not found")
	}
	delete(s.blobs, key)
	return nil
}

func (s *memBlobStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// stubNotifier records push notifications on a channel
type stubNotifier struct {
	calls chan [3]string
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{calls: make(chan [3]string, 8)}
}

func (n *stubNotifier) Notify(deviceToken, title, body string) error {
	n.calls <- [3]string{deviceToken, title, body}
	return nil
}

func testUser(id string) *models.User {
	return &models.User{
		ID:          id,
		Email:       id + "@example.com",
		Name:        "user " + id,
		Gender:      "female",
		Birth:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "test user",
		Likes:       []string{},
		Nopes:       []string{},
		Reveals:     []string{},
		Pictures:    []models.Picture{},
		Reports:     []models.Report{},
		CreatedAt:   time.Now(),
	}
}
