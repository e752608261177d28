// Package inbox keeps per-user notifications, favorite reports and folder
// subscriptions in memory. A Store is created once by the application and
// passed to the components that need it.
package inbox

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lucsky/cuid"
)

// Notification types.
const (
	TypeInfo     = "info"
	TypeFile     = "file"
	TypeAccepted = "accepted"
	TypeRejected = "rejected"
)

// Notification is a message shown to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"time"`
	Read      bool      `json:"read"`
}

// Favorite references a routed report by folder and file name.
type Favorite struct {
	Folder   string `json:"folder"`
	FileName string `json:"fileName"`
}

// Store is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	notifications map[string][]*Notification // newest first
	favorites     map[string]map[string]struct{}
	subscriptions map[string]map[string]struct{} // folder -> users
	now           func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		notifications: make(map[string][]*Notification),
		favorites:     make(map[string]map[string]struct{}),
		subscriptions: make(map[string]map[string]struct{}),
		now:           time.Now,
	}
}

// Notifications returns a copy of the user's notifications, newest first.
func (s *Store) Notifications(userID string) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.notifications[userID]
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, *n)
	}
	return out
}

// AddNotification prepends a new unread notification for userID.
func (s *Store) AddNotification(userID, kind, title, message string) Notification {
	if kind == "" {
		kind = TypeInfo
	}
	if title == "" {
		title = "Notification"
	}

	n := &Notification{
		ID:        cuid.New(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.notifications[userID] = append([]*Notification{n}, s.notifications[userID]...)
	s.mu.Unlock()

	return *n
}

// MarkRead flags one notification as read. It reports whether it was found.
func (s *Store) MarkRead(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id {
			n.Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every notification of userID as read.
func (s *Store) MarkAllRead(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		n.Read = true
	}
}

// DeleteNotification removes one notification. It reports whether it was found.
func (s *Store) DeleteNotification(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	for i, n := range list {
		if n.ID == id {
			s.notifications[userID] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// ClearNotifications drops every notification of userID.
func (s *Store) ClearNotifications(userID string) {
	s.mu.Lock()
	delete(s.notifications, userID)
	s.mu.Unlock()
}

func favoriteKey(folder, fileName string) string {
	return folder + "|" + fileName
}

// Favorites returns the user's favorites sorted by folder then file name.
func (s *Store) Favorites(userID string) []Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Favorite, 0, len(s.favorites[userID]))
	for key := range s.favorites[userID] {
		folder, fileName, _ := strings.Cut(key, "|")
		out = append(out, Favorite{Folder: folder, FileName: fileName})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Folder != out[j].Folder {
			return out[i].Folder < out[j].Folder
		}
		return out[i].FileName < out[j].FileName
	})
	return out
}

// AddFavorite is idempotent.
func (s *Store) AddFavorite(userID, folder, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.favorites[userID]
	if !ok {
		set = make(map[string]struct{})
		s.favorites[userID] = set
	}
	set[favoriteKey(folder, fileName)] = struct{}{}
}

// RemoveFavorite drops a favorite; the user entry goes once it is empty.
func (s *Store) RemoveFavorite(userID, folder, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.favorites[userID]
	if !ok {
		return
	}
	delete(set, favoriteKey(folder, fileName))
	if len(set) == 0 {
		delete(s.favorites, userID)
	}
}

// IsFavorite reports whether the report is among the user's favorites.
func (s *Store) IsFavorite(userID, folder, fileName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.favorites[userID][favoriteKey(folder, fileName)]
	return ok
}

// Subscribe registers userID for notifications about reports routed to folder.
func (s *Store) Subscribe(userID, folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok := s.subscriptions[folder]
	if !ok {
		users = make(map[string]struct{})
		s.subscriptions[folder] = users
	}
	users[userID] = struct{}{}
}

// Unsubscribe removes the subscription, if any.
func (s *Store) Unsubscribe(userID, folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok := s.subscriptions[folder]
	if !ok {
		return
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(s.subscriptions, folder)
	}
}

// Subscriptions returns the folders userID is subscribed to, sorted.
func (s *Store) Subscriptions(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := make([]string, 0)
	for folder, users := range s.subscriptions {
		if _, ok := users[userID]; ok {
			folders = append(folders, folder)
		}
	}
	sort.Strings(folders)
	return folders
}

// SubscribersOf returns the users subscribed to folder, sorted.
func (s *Store) SubscribersOf(folder string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.subscriptions[folder]))
	for user := range s.subscriptions[folder] {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}
