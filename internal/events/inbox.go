package events

import (
	"context"
	"fmt"

	"report-router/internal/inbox"
	"report-router/internal/routing"
)

// InboxPublisher notifies every subscriber of the destination folder.
type InboxPublisher struct {
	store *inbox.Store
}

func NewInboxPublisher(store *inbox.Store) *InboxPublisher {
	return &InboxPublisher{store: store}
}

func (p *InboxPublisher) PublishRouted(_ context.Context, event routing.RoutedEvent) error {
	for _, user := range p.store.SubscribersOf(event.Folder) {
		p.store.AddNotification(user, inbox.TypeFile,
			"New report in "+event.Folder,
			fmt.Sprintf("%s is now available in %s", event.FileName, event.Folder),
		)
	}
	return nil
}
