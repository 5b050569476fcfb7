package room

import (
	"context"

	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/session"
)

// OpenDiscussion creates a discussion in the room's store and
// broadcasts DiscussionCreated to every connected participant.
func (r *Room) OpenDiscussion(ctx context.Context, title string, creator session.UserId) (discussion.Meta, error) {
	meta, err := r.discussions.Create(ctx, title, creator)
	if err != nil {
		return discussion.Meta{}, err
	}
	r.SendAll(Message{Kind: MessageDiscussionCreated, Discussion: &meta})
	return meta, nil
}

// Speak posts a root message into discussionId and broadcasts Spoke.
func (r *Room) Speak(ctx context.Context, discussionId discussion.DiscussionId, userId session.UserId, text string) (discussion.Message, error) {
	msg, err := r.discussions.Speak(ctx, discussionId, userId, text)
	if err != nil {
		return discussion.Message{}, err
	}
	r.SendAll(Message{Kind: MessageDiscussionSpoke, Post: &msg})
	return msg, nil
}

// Reply posts a threaded reply to an existing message and broadcasts
// Replied.
func (r *Room) Reply(ctx context.Context, userId session.UserId, to discussion.MessageId, text string) (discussion.Message, error) {
	msg, err := r.discussions.Reply(ctx, userId, to, text)
	if err != nil {
		return discussion.Message{}, err
	}
	r.SendAll(Message{Kind: MessageDiscussionReplied, Post: &msg})
	return msg, nil
}

// CloseDiscussion closes discussionId and broadcasts Closed.
func (r *Room) CloseDiscussion(ctx context.Context, discussionId discussion.DiscussionId) error {
	if err := r.discussions.Close(ctx, discussionId); err != nil {
		return err
	}
	r.SendAll(Message{Kind: MessageDiscussionClosed, Discussion: &discussion.Meta{Id: discussionId}})
	return nil
}

// RenderMessage returns messageId's text rendered to HTML, memoizing the
// result by message id since a message's text never changes once posted.
// A participant scrolling back through a transcript re-requests the same
// rendered messages repeatedly; this spares goldmark a re-parse on every
// such request. Grounded on the teacher's cache use in
// internal/server (LRUCache), retargeted from repository-listing entries
// to rendered discussion HTML.
func (r *Room) RenderMessage(ctx context.Context, discussionId discussion.DiscussionId, messageId discussion.MessageId) (string, error) {
	key := string(discussionId) + "/" + string(messageId)
	if html, ok := r.htmlCache.Get(key); ok {
		return html, nil
	}

	bundle, err := r.discussions.DiscussionBy(ctx, discussionId)
	if err != nil {
		return "", err
	}

	for _, msg := range bundle.Messages {
		if msg.Id != messageId {
			continue
		}
		html, err := discussion.RenderHTML(msg.Text)
		if err != nil {
			return "", err
		}
		r.htmlCache.Put(key, html)
		return html, nil
	}

	return "", &discussion.Error{Kind: discussion.ErrMessageNotExists, MessageId: messageId}
}
