package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory fakes mirroring the jsonfile store's observable behavior:
// newest-first ordering for posts and notifications, unordered pair lookup
// for connections, atomic check-then-delete. Kept minimal on purpose.

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if githubID == 0 {
		return nil, apperror.NotFound("user", "githubID=0")
	}
	for _, u := range m.users {
		if u.GitHubID == githubID {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", "github user")
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	m.users[user.ID] = *user
	return nil
}

type mockPostRepo struct {
	mu    sync.Mutex
	posts []model.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	if post.Likes == nil {
		post.Likes = []model.Like{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	m.posts = append([]model.Post{*post}, m.posts...)
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (m *mockPostRepo) List(_ context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Post{}, m.posts...), nil
}

func (m *mockPostRepo) ListByAuthor(_ context.Context, authorID string) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Post{}
	for _, p := range m.posts {
		if p.Author.ID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPostRepo) Update(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == post.ID {
			m.posts[i] = *post
			return nil
		}
	}
	return apperror.NotFound("post", post.ID)
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

type mockConnectionRepo struct {
	mu    sync.Mutex
	conns []model.Connection
}

func newMockConnectionRepo() *mockConnectionRepo {
	return &mockConnectionRepo{}
}

func (m *mockConnectionRepo) Create(_ context.Context, conn *model.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn.ID == "" {
		conn.ID = xid.New().String()
	}
	m.conns = append(m.conns, *conn)
	return nil
}

func (m *mockConnectionRepo) GetByID(_ context.Context, id string) (*model.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conns {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, apperror.NotFound("connection", id)
}

func (m *mockConnectionRepo) GetByPair(_ context.Context, user1ID, user2ID string) (*model.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conns {
		if (c.User1ID == user1ID && c.User2ID == user2ID) ||
			(c.User1ID == user2ID && c.User2ID == user1ID) {
			c := c
			return &c, nil
		}
	}
	return nil, apperror.NotFound("connection", user1ID+"/"+user2ID)
}

func (m *mockConnectionRepo) ListForUser(_ context.Context, userID string) ([]model.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Connection{}
	for _, c := range m.conns {
		if c.Involves(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) Update(_ context.Context, conn *model.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.conns {
		if c.ID == conn.ID {
			m.conns[i] = *conn
			return nil
		}
	}
	return apperror.NotFound("connection", conn.ID)
}

// Delete is check-then-remove under the same lock, matching the store:
// concurrent deletes of one record yield exactly one success.
func (m *mockConnectionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.conns {
		if c.ID == id {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("connection", id)
}

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	createErr     error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if n.ID == "" {
		n.ID = xid.New().String()
	}
	n.Read = false
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	m.notifications = append([]model.Notification{*n}, m.notifications...)
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n := n
			return &n, nil
		}
	}
	return nil, apperror.NotFound("notification", id)
}

func (m *mockNotificationRepo) ListForUser(_ context.Context, userID string) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.notifications {
		if existing.ID == n.ID {
			m.notifications[i] = *n
			return nil
		}
	}
	return apperror.NotFound("notification", n.ID)
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
		}
	}
	return nil
}

// recordingNotifier captures Dispatch calls so tests can assert on what,
// if anything, was sent.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []dispatchCall
}

type dispatchCall struct {
	UserID  string
	Type    model.NotificationType
	Message string
	Data    map[string]any
}

func (r *recordingNotifier) Dispatch(_ context.Context, userID string, typ model.NotificationType, message string, data map[string]any) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, dispatchCall{UserID: userID, Type: typ, Message: message, Data: data})
	return &model.Notification{
		ID:      xid.New().String(),
		UserID:  userID,
		Type:    typ,
		Message: message,
		Data:    data,
	}, nil
}

func (r *recordingNotifier) Calls() []dispatchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dispatchCall{}, r.calls...)
}

// recordingPusher captures Push calls and can be told to fail.
type recordingPusher struct {
	mu      sync.Mutex
	pushed  []pushCall
	pushErr error
}

type pushCall struct {
	SessionID    string
	Notification *model.Notification
}

func (r *recordingPusher) Push(sessionID string, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pushErr != nil {
		return r.pushErr
	}
	r.pushed = append(r.pushed, pushCall{SessionID: sessionID, Notification: n})
	return nil
}

func (r *recordingPusher) Pushed() []pushCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pushCall{}, r.pushed...)
}
